package chartengine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/series"
)

// Config is the static per-chart configuration. Zero values get defaults
// where noted; invalid combinations make New fail.
type Config struct {
	// Width and Height are the initial pixel surface. Resize replaces them;
	// Width may start at zero when the host sizes charts after layout.
	Width  float64
	Height float64

	Margin Margin

	// ZoomRange bounds the visible window size.
	ZoomRange ZoomRange

	// DefaultVisibleCount is the window size applied on every dataset
	// replacement and on ResetView. Must be positive.
	DefaultVisibleCount int

	Gestures GestureConfig

	// ClearAfter is the selection auto-clear timeout. Zero means
	// DefaultClearAfter.
	ClearAfter time.Duration

	// Fallback is the value range used when no data is visible. A zero or
	// inverted range means DefaultRange.
	Fallback ValueRange

	// OnSelectionChange observes every selection transition. It is invoked
	// on the owning goroutine.
	OnSelectionChange SelectionCallback

	// Logger defaults to a no-op logger.
	Logger *observability.CoreLogger
}

// command is a queued state transition applied on the owning goroutine.
type command interface {
	apply(c *Chart)
}

type tapCmd struct {
	x       float64
	y       float64
	version uint64
}

type zoomCmd struct {
	scale   float64
	version uint64
}

type clearCmd struct {
	generation uint64
}

const cmdQueueSize = 256

// Chart ties the engine together for one panel: the dataset window, the
// value range, the selection and the gesture command queue. All methods
// except the Gestures surface must run on the chart's owning goroutine;
// recognizer and timer effects cross back over the command queue.
type Chart struct {
	cfg    Config
	logger *observability.CoreLogger

	data     []series.Point
	viewport *ViewportController
	sel      *selectionModel
	gestures *Gestures

	width  float64
	height float64

	// dataVersion invalidates commands recognized against a dataset that
	// has since been replaced.
	dataVersion atomic.Uint64

	cmds    chan command
	wake    chan struct{}
	dropped atomic.Uint64
}

// New validates cfg and returns an empty chart. The dataset starts empty:
// frames render nothing and gestures are inert until SetData.
func New(cfg Config) (*Chart, error) {
	if cfg.DefaultVisibleCount <= 0 {
		return nil, fmt.Errorf("chartengine: default visible count %d must be positive", cfg.DefaultVisibleCount)
	}
	viewport, err := NewViewportController(cfg.ZoomRange)
	if err != nil {
		return nil, err
	}
	if cfg.Height <= cfg.Margin.Top+cfg.Margin.Bottom {
		return nil, fmt.Errorf("chartengine: height %g leaves no plot area inside vertical margins %g+%g",
			cfg.Height, cfg.Margin.Top, cfg.Margin.Bottom)
	}
	if cfg.ClearAfter <= 0 {
		cfg.ClearAfter = DefaultClearAfter
	}
	if cfg.Fallback.Span() <= 0 {
		cfg.Fallback = DefaultRange
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NewNoOpLogger()
	}

	c := &Chart{
		cfg:      cfg,
		logger:   cfg.Logger,
		viewport: viewport,
		width:    cfg.Width,
		height:   cfg.Height,
		cmds:     make(chan command, cmdQueueSize),
		wake:     make(chan struct{}, 1),
	}
	c.sel = newSelectionModel(cfg.ClearAfter, cfg.OnSelectionChange, func(gen uint64) {
		c.enqueue(clearCmd{generation: gen})
	})
	c.gestures = &Gestures{chart: c, scale: neutralScale}
	return c, nil
}

// SetData replaces the dataset wholesale. The window resets to the most
// recent DefaultVisibleCount points, the pending clear timer is cancelled,
// any active selection drops (firing the callback), and commands recognized
// against the previous dataset are invalidated.
func (c *Chart) SetData(points []series.Point) {
	c.data = points
	c.dataVersion.Add(1)
	c.viewport.SetLength(len(points))
	c.viewport.Reset(c.cfg.DefaultVisibleCount)
	c.sel.clear()
}

// ResetView restores the default window and drops the selection, leaving
// the dataset alone.
func (c *Chart) ResetView() {
	c.viewport.Reset(c.cfg.DefaultVisibleCount)
	c.sel.clear()
}

// Resize updates the pixel surface used for mapping and rendering. Sizes
// that leave no plot area inside the margins keep the previous surface.
func (c *Chart) Resize(width, height float64) {
	if width <= c.cfg.Margin.Left+c.cfg.Margin.Right {
		return
	}
	if height <= c.cfg.Margin.Top+c.cfg.Margin.Bottom {
		return
	}
	c.width = width
	c.height = height
}

// Gestures returns the recognizer input surface, the only part of the chart
// other goroutines may call.
func (c *Chart) Gestures() *Gestures { return c.gestures }

// Viewport returns the current window.
func (c *Chart) Viewport() Viewport { return c.viewport.Viewport() }

// Selection returns the current selection.
func (c *Chart) Selection() Selection { return c.sel.sel }

// VisiblePoints returns the viewport slice of the dataset. Callers must not
// mutate it.
func (c *Chart) VisiblePoints() []series.Point {
	v := c.viewport.Viewport()
	return c.data[v.Start:v.End]
}

// Wake returns a channel receiving a coalesced signal whenever a command
// lands on an empty queue, so an idle host loop knows to Drain.
func (c *Chart) Wake() <-chan struct{} { return c.wake }

// Drain applies every queued command in arrival order. The host calls it on
// the owning goroutine before building a frame.
func (c *Chart) Drain() {
	for {
		select {
		case cmd := <-c.cmds:
			cmd.apply(c)
		default:
			return
		}
	}
}

// Context builds the read-only frame snapshot, or nil when nothing is
// visible or the surface has no plot area.
func (c *Chart) Context() *Context {
	visible := c.VisiblePoints()
	if len(visible) == 0 {
		return nil
	}
	if c.width <= c.cfg.Margin.Left+c.cfg.Margin.Right {
		return nil
	}
	if c.height <= c.cfg.Margin.Top+c.cfg.Margin.Bottom {
		return nil
	}
	rng := ComputeRange(visible, c.cfg.Fallback)
	return &Context{
		Points:    visible,
		Range:     rng,
		Margin:    c.cfg.Margin,
		Width:     c.width,
		Height:    c.height,
		Map:       NewMapper(c.width, c.height, c.cfg.Margin, rng, len(visible)),
		Selection: c.sel.sel,
	}
}

// Frame renders the current state through r. An empty dataset produces an
// empty primitive list.
func (c *Chart) Frame(r Renderer) []Primitive {
	ctx := c.Context()
	if ctx == nil {
		return nil
	}
	return r.Render(ctx)
}

// Close cancels the pending selection-clear timer. The chart must not be
// used afterwards.
func (c *Chart) Close() {
	c.sel.stopTimer()
}

func (c *Chart) enqueue(cmd command) {
	select {
	case c.cmds <- cmd:
	default:
		c.dropped.Add(1)
		c.logger.Debug("chartengine: command queue full, dropping", "dropped", c.dropped.Load())
		return
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (t tapCmd) apply(c *Chart) {
	if t.version != c.dataVersion.Load() {
		return
	}
	visible := c.VisiblePoints()
	if len(visible) == 0 {
		return
	}
	if t.y < c.cfg.Margin.Top || t.y > c.height-c.cfg.Margin.Bottom {
		return
	}
	rng := ComputeRange(visible, c.cfg.Fallback)
	mapper := NewMapper(c.width, c.height, c.cfg.Margin, rng, len(visible))
	index, ok := mapper.IndexAt(t.x)
	if !ok {
		return
	}
	c.sel.selectIndex(index, visible)
}

func (z zoomCmd) apply(c *Chart) {
	if z.version != c.dataVersion.Load() {
		return
	}
	if len(c.data) == 0 {
		return
	}
	if !c.viewport.ApplyZoom(z.scale) {
		return
	}
	// The window moved; a selection index past its new size is stale.
	if !c.sel.sel.None() && c.sel.sel.Index >= c.viewport.Viewport().Size() {
		c.sel.clear()
	}
}

func (cl clearCmd) apply(c *Chart) {
	c.sel.clearExpired(cl.generation)
}
