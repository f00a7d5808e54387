//go:build !windows

package overlay

import (
	"fmt"
	"log"
	"sync"
)

type headlessOpener struct{}

func newPlatformOpener() Opener { return headlessOpener{} }

// headlessWindow stands in for the layered window where no Win32 is available.
type headlessWindow struct {
	mu     sync.Mutex
	bounds Bounds
	alpha  uint8
	closed bool
}

func (headlessOpener) Open(bounds Bounds, alpha uint8) (Window, error) {
	if bounds.Empty() {
		return nil, fmt.Errorf("invalid overlay bounds %s", bounds)
	}
	log.Printf("OVERLAY: headless window over %s, alpha=%d", bounds, alpha)
	return &headlessWindow{bounds: bounds, alpha: alpha}, nil
}

func (w *headlessWindow) SetAlpha(alpha uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.alpha = alpha
	log.Printf("OVERLAY: headless alpha=%d", alpha)
	return nil
}

func (w *headlessWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		log.Printf("OVERLAY: headless window over %s closed", w.bounds)
	}
	return nil
}
