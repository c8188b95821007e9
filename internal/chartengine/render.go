package chartengine

import "github.com/quotelab/tickmark/internal/series"

// Color identifies a palette slot. Hosts map slots to whatever their drawing
// surface uses for styling; the engine never deals in concrete colors.
type Color uint8

const (
	ColorNeutral Color = iota
	ColorAccent
	ColorUp
	ColorDown
	ColorMuted
)

// XY is a point in pixel space.
type XY struct {
	X float64
	Y float64
}

// Primitive is one declarative draw call. Hosts replay a frame's primitives
// onto their surface in order: MoveTo lifts the pen, LineTo strokes from the
// pen position, Rect and Path are self-contained.
type Primitive interface {
	primitive()
}

// MoveTo lifts the pen to a new position without drawing.
type MoveTo struct {
	X float64
	Y float64
}

// LineTo strokes a segment from the current pen position to (X, Y) and
// leaves the pen there.
type LineTo struct {
	X     float64
	Y     float64
	Color Color
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X     float64
	Y     float64
	W     float64
	H     float64
	Color Color
	Fill  bool
}

// Path is a multi-point polyline, optionally closed into a filled region.
type Path struct {
	Points []XY
	Color  Color
	Closed bool
	Fill   bool
}

func (MoveTo) primitive() {}
func (LineTo) primitive() {}
func (Rect) primitive()   {}
func (Path) primitive()   {}

// Context is the read-only frame snapshot renderers draw from: the
// viewport-sliced points, the padded value range, the surface geometry, the
// coordinate mapper and the current selection. Renderers must not mutate it.
type Context struct {
	Points    []series.Point
	Range     ValueRange
	Margin    Margin
	Width     float64
	Height    float64
	Map       Mapper
	Selection Selection
}

// VisibleLength returns the number of points in the window.
func (c *Context) VisibleLength() int { return len(c.Points) }

// PlotTop returns the pixel Y of the plot area's upper edge.
func (c *Context) PlotTop() float64 { return c.Margin.Top }

// PlotBottom returns the pixel Y of the plot area's lower edge.
func (c *Context) PlotBottom() float64 { return c.Height - c.Margin.Bottom }

// Renderer turns a frame snapshot into drawing primitives. Implementations
// must be pure: identical contexts and options produce identical primitives,
// which is what makes frame output snapshot-testable.
type Renderer interface {
	Render(ctx *Context) []Primitive
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx *Context) []Primitive

func (f RendererFunc) Render(ctx *Context) []Primitive { return f(ctx) }

// markerHalf is the half-extent of point and crosshair markers in pixels.
const markerHalf = 1.0

// crosshairPrimitives renders the shared selection overlay: a vertical hair
// through the selected index plus a marker square on the point. Renderers
// append it so every panel style gets the same selection treatment.
func crosshairPrimitives(ctx *Context) []Primitive {
	sel := ctx.Selection
	if sel.None() || sel.Index < 0 || sel.Index >= ctx.VisibleLength() {
		return nil
	}
	x := ctx.Map.ToX(sel.Index)
	y := ctx.Map.ToY(sel.Point.Value.Primary())
	return []Primitive{
		MoveTo{X: x, Y: ctx.PlotTop()},
		LineTo{X: x, Y: ctx.PlotBottom(), Color: ColorMuted},
		Rect{
			X:     x - markerHalf,
			Y:     y - markerHalf,
			W:     2 * markerHalf,
			H:     2 * markerHalf,
			Color: ColorAccent,
			Fill:  true,
		},
	}
}

// barWidth derives the per-point rectangle width for bar-like renderers:
// 60% of the per-point slot, clamped to [2, 10] pixels.
func barWidth(plotWidth float64, visibleLength int) float64 {
	if visibleLength <= 0 {
		return 2
	}
	w := plotWidth / float64(visibleLength) * 0.6
	if w < 2 {
		w = 2
	}
	if w > 10 {
		w = 10
	}
	return w
}
