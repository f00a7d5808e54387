package overlay

import (
	"errors"
	"fmt"
)

// Bounds is a monitor rectangle in virtual-screen coordinates.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", b.Width, b.Height, b.X, b.Y)
}

// Empty reports whether b covers no pixels.
func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// ErrClosed is returned by Window methods after Close, or once the native
// window has been destroyed by someone else.
var ErrClosed = errors.New("overlay window closed")

// Window is one live dimming layer. Implementations own the native handle and
// must be safe to call from any goroutine.
type Window interface {
	// SetAlpha changes the layer opacity: 0 is fully transparent, 255 opaque black.
	SetAlpha(alpha uint8) error
	// Close destroys the native window. Calling it twice returns nil.
	Close() error
}

// Opener creates overlay windows.
type Opener interface {
	Open(bounds Bounds, alpha uint8) (Window, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(bounds Bounds, alpha uint8) (Window, error)

func (f OpenerFunc) Open(bounds Bounds, alpha uint8) (Window, error) { return f(bounds, alpha) }

// NewOpener returns the platform implementation. Windows gets a layered
// top-most window; other platforms get a headless window that only logs.
func NewOpener() Opener {
	return newPlatformOpener()
}

// signalReady reports the outcome of window creation without blocking when
// it has already been reported.
func signalReady(ready chan<- error, err error) bool {
	select {
	case ready <- err:
		return true
	default:
		return false
	}
}
