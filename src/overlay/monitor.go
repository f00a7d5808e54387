package overlay

import (
	"fmt"
	"image"
	"log"

	"github.com/kbinani/screenshot"
)

// Display queries, replaced in tests.
var (
	numActiveDisplays = screenshot.NumActiveDisplays
	getDisplayBounds  = screenshot.GetDisplayBounds
)

// MonitorBounds returns the bounds of the display at index. An index outside
// the active display range falls back to the primary display (index 0).
func MonitorBounds(index int) (Bounds, error) {
	n := numActiveDisplays()
	if n == 0 {
		return Bounds{}, fmt.Errorf("no active displays found")
	}
	if index < 0 || index >= n {
		log.Printf("overlay: monitor %d not present (%d active), using primary", index, n)
		index = 0
	}
	b := boundsFromRect(getDisplayBounds(index))
	if b.Empty() {
		return Bounds{}, fmt.Errorf("display %d reports empty bounds %s", index, b)
	}
	return b, nil
}

func boundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}
