package chartengine

import "github.com/quotelab/tickmark/internal/series"

// CandleRenderer draws OHLC points as a vertical wick from high to low plus
// a body rectangle between open and close, colored by the sign of
// close - open. Points whose value is not OHLC-shaped are skipped.
type CandleRenderer struct {
	Width float64
	Up    Color
	Down  Color
}

func (r CandleRenderer) Render(ctx *Context) []Primitive {
	n := ctx.VisibleLength()
	if n == 0 {
		return nil
	}

	w := r.Width
	if w <= 0 {
		w = barWidth(ctx.Map.PlotWidth(), n)
	}
	up := r.Up
	if up == ColorNeutral {
		up = ColorUp
	}
	down := r.Down
	if down == ColorNeutral {
		down = ColorDown
	}

	prims := make([]Primitive, 0, 3*n+3)
	for i := range n {
		ohlc, ok := ctx.Points[i].Value.(series.OHLC)
		if !ok {
			continue
		}
		color := up
		if !ohlc.Bullish() {
			color = down
		}

		x := ctx.Map.ToX(i)
		prims = append(prims,
			MoveTo{X: x, Y: ctx.Map.ToY(ohlc.High)},
			LineTo{X: x, Y: ctx.Map.ToY(ohlc.Low), Color: color},
		)

		yOpen := ctx.Map.ToY(ohlc.Open)
		yClose := ctx.Map.ToY(ohlc.Close)
		top := yOpen
		if yClose < top {
			top = yClose
		}
		h := yOpen - yClose
		if h < 0 {
			h = -h
		}
		prims = append(prims, Rect{
			X:     x - w/2,
			Y:     top,
			W:     w,
			H:     h,
			Color: color,
			Fill:  true,
		})
	}

	return append(prims, crosshairPrimitives(ctx)...)
}
