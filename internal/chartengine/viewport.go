package chartengine

import (
	"fmt"
	"math"
)

// ZoomRange bounds how many points a window may span. Min must be at least 1
// and no greater than Max.
type ZoomRange struct {
	Min int
	Max int
}

func (z ZoomRange) validate() error {
	if z.Min < 1 {
		return fmt.Errorf("chartengine: zoom range min %d must be at least 1", z.Min)
	}
	if z.Min > z.Max {
		return fmt.Errorf("chartengine: zoom range min %d exceeds max %d", z.Min, z.Max)
	}
	return nil
}

// Viewport is a half-open index window [Start, End) into the full dataset.
type Viewport struct {
	Start int
	End   int
}

// Size returns the number of points in the window.
func (v Viewport) Size() int { return v.End - v.Start }

// Per-gesture bounds on the inverse pinch scale: one pinch never grows or
// shrinks the window by more than 2x.
const (
	minZoomStep = 0.5
	maxZoomStep = 2.0
)

// ViewportController owns the visible window of one chart. It is not
// goroutine safe; the chart's owning goroutine calls it.
type ViewportController struct {
	view Viewport
	n    int
	zoom ZoomRange
}

// NewViewportController validates the zoom range and returns a controller
// over an empty dataset. Call SetLength and Reset before use.
func NewViewportController(zoom ZoomRange) (*ViewportController, error) {
	if err := zoom.validate(); err != nil {
		return nil, err
	}
	return &ViewportController{zoom: zoom}, nil
}

// Viewport returns the current window.
func (c *ViewportController) Viewport() Viewport { return c.view }

// Length returns the dataset length the controller was last told about.
func (c *ViewportController) Length() int { return c.n }

// SetLength records the dataset length after a wholesale replacement. The
// window is left stale; callers follow up with Reset.
func (c *ViewportController) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	c.n = n
}

// Reset shows the most recent visibleCount points: Start = max(0, N-k),
// End = N. An empty dataset yields the empty window {0, 0}.
func (c *ViewportController) Reset(visibleCount int) {
	start := c.n - visibleCount
	if start < 0 {
		start = 0
	}
	c.view = Viewport{Start: start, End: c.n}
}

// ApplyZoom resizes the window around its midpoint. scale is the raw pinch
// scale, so values above 1 zoom in (a smaller window). The inverse scale is
// clamped to [0.5, 2.0], the resulting size to the zoom range intersected
// with the dataset length, and the recentered window is shifted back inside
// [0, N] when it overhangs an edge. The move commits atomically only when
// the result satisfies every viewport invariant; otherwise the window is
// left untouched and ApplyZoom reports false.
func (c *ViewportController) ApplyZoom(scale float64) bool {
	if c.n == 0 || c.view.Size() <= 0 {
		return false
	}
	if scale <= 0 || !isFinite(scale) {
		return false
	}

	factor := 1 / scale
	if factor < minZoomStep {
		factor = minZoomStep
	}
	if factor > maxZoomStep {
		factor = maxZoomStep
	}

	lo := c.zoom.Min
	hi := c.zoom.Max
	if c.n < hi {
		hi = c.n
	}
	if lo > hi {
		// The dataset is too short for the configured zoom range.
		return false
	}

	size := int(math.Round(float64(c.view.Size()) * factor))
	if size < lo {
		size = lo
	}
	if size > hi {
		size = hi
	}

	center := (c.view.Start + c.view.End) / 2
	start := center - size/2
	end := start + size
	if start < 0 {
		start = 0
		end = size
	}
	if end > c.n {
		start = c.n - size
		end = c.n
	}

	next := Viewport{Start: start, End: end}
	if !c.valid(next) {
		return false
	}
	c.view = next
	return true
}

// valid reports whether v satisfies the viewport invariants for the current
// dataset: 0 <= Start < End <= N and a size inside the zoom range
// intersected with [1, N].
func (c *ViewportController) valid(v Viewport) bool {
	if v.Start < 0 || v.Start >= v.End || v.End > c.n {
		return false
	}
	size := v.Size()
	hi := c.zoom.Max
	if c.n < hi {
		hi = c.n
	}
	return size >= c.zoom.Min && size <= hi
}
