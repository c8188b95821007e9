package chartengine

// BarColorFunc resolves the color of one bar from its value and visible
// index.
type BarColorFunc func(value float64, index int) Color

// BarRenderer draws one filled rectangle per visible point, anchored at a
// baseline value (not necessarily zero). Bar width defaults to 60% of the
// per-point slot clamped to [2, 10] pixels unless Width overrides it.
type BarRenderer struct {
	Baseline float64
	Width    float64
	Color    BarColorFunc
}

func (r BarRenderer) Render(ctx *Context) []Primitive {
	n := ctx.VisibleLength()
	if n == 0 {
		return nil
	}

	w := r.Width
	if w <= 0 {
		w = barWidth(ctx.Map.PlotWidth(), n)
	}
	colorOf := r.Color
	if colorOf == nil {
		colorOf = func(float64, int) Color { return ColorAccent }
	}

	baseY := ctx.Map.ToY(r.Baseline)
	prims := make([]Primitive, 0, n+3)
	for i := range n {
		v := ctx.Points[i].Value.Primary()
		y := ctx.Map.ToY(v)
		top := y
		if baseY < top {
			top = baseY
		}
		h := y - baseY
		if h < 0 {
			h = -h
		}
		prims = append(prims, Rect{
			X:     ctx.Map.ToX(i) - w/2,
			Y:     top,
			W:     w,
			H:     h,
			Color: colorOf(v, i),
			Fill:  true,
		})
	}

	return append(prims, crosshairPrimitives(ctx)...)
}
