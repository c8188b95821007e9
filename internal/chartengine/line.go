package chartengine

// LineRenderer draws the window as a polyline through each point's primary
// value, optionally shading the area down to the plot bottom and marking the
// individual points.
type LineRenderer struct {
	Color   Color
	Fill    bool
	Markers bool
}

func (r LineRenderer) Render(ctx *Context) []Primitive {
	n := ctx.VisibleLength()
	if n == 0 {
		return nil
	}

	color := r.Color
	if color == ColorNeutral {
		color = ColorAccent
	}

	prims := make([]Primitive, 0, 2*n+4)

	// Fill first so the stroke overdraws the region's top edge.
	if r.Fill && n >= 2 {
		pts := make([]XY, 0, n+2)
		for i := range n {
			pts = append(pts, XY{
				X: ctx.Map.ToX(i),
				Y: ctx.Map.ToY(ctx.Points[i].Value.Primary()),
			})
		}
		bottom := ctx.PlotBottom()
		pts = append(pts,
			XY{X: ctx.Map.ToX(n - 1), Y: bottom},
			XY{X: ctx.Map.ToX(0), Y: bottom},
		)
		prims = append(prims, Path{Points: pts, Color: ColorMuted, Closed: true, Fill: true})
	}

	if n == 1 {
		// No line to draw; show the lone point.
		x := ctx.Map.ToX(0)
		y := ctx.Map.ToY(ctx.Points[0].Value.Primary())
		prims = append(prims, Rect{
			X: x - markerHalf, Y: y - markerHalf,
			W: 2 * markerHalf, H: 2 * markerHalf,
			Color: color, Fill: true,
		})
	} else {
		prims = append(prims, MoveTo{
			X: ctx.Map.ToX(0),
			Y: ctx.Map.ToY(ctx.Points[0].Value.Primary()),
		})
		for i := 1; i < n; i++ {
			prims = append(prims, LineTo{
				X:     ctx.Map.ToX(i),
				Y:     ctx.Map.ToY(ctx.Points[i].Value.Primary()),
				Color: color,
			})
		}
	}

	if r.Markers {
		for i := range n {
			x := ctx.Map.ToX(i)
			y := ctx.Map.ToY(ctx.Points[i].Value.Primary())
			prims = append(prims, Rect{
				X: x - markerHalf, Y: y - markerHalf,
				W: 2 * markerHalf, H: 2 * markerHalf,
				Color: color, Fill: true,
			})
		}
	}

	return append(prims, crosshairPrimitives(ctx)...)
}
