// Package dimmer owns the single screen-dimming overlay of the process and
// exposes the three control operations: destroy, set brightness and get
// brightness.
//
// Brightness is a percentage where 100 means no dimming (the overlay is fully
// transparent) and 0 means maximum dimming (the overlay is at its maximum
// opacity).
package dimmer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"screen-dimmer/src/overlay"
)

const (
	MinBrightness     = 0.0
	MaxBrightness     = 100.0
	DefaultBrightness = MaxBrightness
)

var (
	// ErrOverlayCreationFailed is returned when the native overlay window could
	// not be created. The controller stays in the not-created state.
	ErrOverlayCreationFailed = errors.New("overlay creation failed")
	// ErrInvalidBrightness is returned for values that cannot be clamped (NaN).
	ErrInvalidBrightness = errors.New("invalid brightness value")
)

// BoundsFunc resolves the monitor the overlay is laid over. It is called each
// time a new overlay is created so display changes are picked up.
type BoundsFunc func() (overlay.Bounds, error)

// Options configure a Controller.
type Options struct {
	// Bounds picks the monitor rectangle. Required.
	Bounds BoundsFunc
	// MaxOpacity caps the overlay opacity in percent (0..100). Zero means 100.
	MaxOpacity float64
}

// Controller manages the existence and opacity of one dimming overlay.
// All methods are safe for concurrent use.
type Controller struct {
	opener     overlay.Opener
	bounds     BoundsFunc
	maxAlpha   float64
	mu         sync.Mutex
	window     overlay.Window
	brightness float64
	listeners  []func(float64)
	seq        uint64

	// notifyMu orders listener calls; notified is the seq last delivered.
	notifyMu sync.Mutex
	notified uint64
}

// New creates a controller with no overlay and brightness at DefaultBrightness.
func New(opener overlay.Opener, opts Options) *Controller {
	maxOpacity := opts.MaxOpacity
	if maxOpacity <= 0 || maxOpacity > 100 || math.IsNaN(maxOpacity) {
		maxOpacity = 100
	}
	return &Controller{
		opener:     opener,
		bounds:     opts.Bounds,
		maxAlpha:   maxOpacity / 100 * 255,
		brightness: DefaultBrightness,
	}
}

// OnChange registers fn to be called with the new brightness after every
// successful set or destroy. fn runs with the controller lock released and
// calls are delivered in the order the changes were applied; a change that
// is overtaken by a newer one before delivery is skipped.
func (c *Controller) OnChange(fn func(float64)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// change is a brightness update waiting to be delivered to listeners.
type change struct {
	seq       uint64
	value     float64
	listeners []func(float64)
}

// SetOverlayBrightness creates the overlay if absent and applies percent to
// it. Values outside [0,100] are clamped.
func (c *Controller) SetOverlayBrightness(percent float64) error {
	if math.IsNaN(percent) {
		return fmt.Errorf("%w: NaN", ErrInvalidBrightness)
	}
	c.mu.Lock()
	ch, err := c.applyLocked(percent)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(ch)
	return nil
}

// AdjustBrightness moves the brightness by delta percentage points.
func (c *Controller) AdjustBrightness(delta float64) error {
	if math.IsNaN(delta) {
		return fmt.Errorf("%w: NaN step", ErrInvalidBrightness)
	}
	c.mu.Lock()
	ch, err := c.applyLocked(c.brightness + delta)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notify(ch)
	return nil
}

func (c *Controller) applyLocked(percent float64) (change, error) {
	clamped := Clamp(percent)
	if clamped != percent {
		log.Printf("dimmer: brightness %.2f out of range, clamped to %.2f", percent, clamped)
	}
	alpha := c.alpha(clamped)
	if c.window != nil {
		err := c.window.SetAlpha(alpha)
		switch {
		case errors.Is(err, overlay.ErrClosed):
			// Destroyed outside our control (session end, external close).
			log.Printf("dimmer: overlay window gone, recreating")
			c.window = nil
		case err != nil:
			return change{}, fmt.Errorf("set overlay alpha: %w", err)
		}
	}
	if c.window == nil {
		if err := c.openLocked(alpha); err != nil {
			return change{}, err
		}
	}
	c.brightness = clamped
	log.Printf("dimmer: brightness=%.2f alpha=%d", clamped, alpha)
	return c.changeLocked(clamped), nil
}

func (c *Controller) changeLocked(v float64) change {
	c.seq++
	return change{seq: c.seq, value: v, listeners: c.listeners}
}

// GetOverlayBrightness returns the last applied brightness, or
// DefaultBrightness when no overlay exists.
func (c *Controller) GetOverlayBrightness() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brightness
}

// DestroyOverlay tears the overlay down. It is a no-op when none exists.
func (c *Controller) DestroyOverlay() error {
	c.mu.Lock()
	w := c.detachLocked()
	if w == nil {
		c.mu.Unlock()
		return nil
	}
	ch := c.changeLocked(DefaultBrightness)
	c.mu.Unlock()

	err := closeWindow(w)
	c.notify(ch)
	return err
}

// Close removes the overlay at process shutdown. Unlike DestroyOverlay it
// does not notify listeners, so persisted state keeps the last brightness.
func (c *Controller) Close() error {
	c.mu.Lock()
	w := c.detachLocked()
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return closeWindow(w)
}

func (c *Controller) detachLocked() overlay.Window {
	w := c.window
	if w == nil {
		return nil
	}
	c.window = nil
	c.brightness = DefaultBrightness
	return w
}

func closeWindow(w overlay.Window) error {
	err := w.Close()
	if err != nil {
		log.Printf("dimmer: overlay close: %v", err)
	} else {
		log.Printf("dimmer: overlay destroyed")
	}
	return err
}

// Exists reports whether an overlay window is currently open.
func (c *Controller) Exists() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window != nil
}

// Alpha returns the overlay opacity used for percent.
func (c *Controller) Alpha(percent float64) uint8 {
	return c.alpha(Clamp(percent))
}

func (c *Controller) alpha(clamped float64) uint8 {
	return uint8(math.Round((MaxBrightness - clamped) / MaxBrightness * c.maxAlpha))
}

func (c *Controller) openLocked(alpha uint8) error {
	if c.bounds == nil {
		return fmt.Errorf("%w: no monitor bounds configured", ErrOverlayCreationFailed)
	}
	b, err := c.bounds()
	if err != nil {
		return fmt.Errorf("%w: resolve monitor: %v", ErrOverlayCreationFailed, err)
	}
	w, err := c.opener.Open(b, alpha)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOverlayCreationFailed, err)
	}
	c.window = w
	log.Printf("dimmer: overlay created over %s", b)
	return nil
}

// Clamp limits percent to [MinBrightness, MaxBrightness].
func Clamp(percent float64) float64 {
	switch {
	case percent < MinBrightness:
		return MinBrightness
	case percent > MaxBrightness:
		return MaxBrightness
	default:
		return percent
	}
}

func (c *Controller) notify(ch change) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if ch.seq <= c.notified {
		return
	}
	c.notified = ch.seq
	for _, fn := range ch.listeners {
		fn(ch.value)
	}
}
