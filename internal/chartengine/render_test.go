package chartengine_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/series"
)

func renderContext(pts []series.Point) *chartengine.Context {
	rng := chartengine.ComputeRange(pts, chartengine.DefaultRange)
	margin := chartengine.Margin{Left: 10, Right: 10, Top: 5, Bottom: 5}
	return &chartengine.Context{
		Points: pts,
		Range:  rng,
		Margin: margin,
		Width:  100,
		Height: 60,
		Map:    chartengine.NewMapper(100, 60, margin, rng, len(pts)),
	}
}

func TestLineRendererPolyline(t *testing.T) {
	t.Parallel()

	ctx := renderContext(scalarPoints(10, 20, 15))
	prims := chartengine.LineRenderer{}.Render(ctx)
	require.Len(t, prims, 3)

	move, ok := prims[0].(chartengine.MoveTo)
	require.True(t, ok)
	require.InDelta(t, ctx.Map.ToX(0), move.X, 1e-9)
	require.InDelta(t, ctx.Map.ToY(10), move.Y, 1e-9)

	for i := 1; i < 3; i++ {
		line, ok := prims[i].(chartengine.LineTo)
		require.True(t, ok)
		require.InDelta(t, ctx.Map.ToX(i), line.X, 1e-9)
		require.Equal(t, chartengine.ColorAccent, line.Color)
	}
}

func TestLineRendererFillAndMarkers(t *testing.T) {
	t.Parallel()

	ctx := renderContext(scalarPoints(10, 20, 15))
	prims := chartengine.LineRenderer{Fill: true, Markers: true}.Render(ctx)

	// Fill path first, then the polyline, then one marker per point.
	path, ok := prims[0].(chartengine.Path)
	require.True(t, ok)
	require.True(t, path.Fill)
	require.True(t, path.Closed)
	require.Len(t, path.Points, 5)
	require.InDelta(t, ctx.PlotBottom(), path.Points[3].Y, 1e-9)
	require.InDelta(t, ctx.PlotBottom(), path.Points[4].Y, 1e-9)

	markers := 0
	for _, p := range prims {
		if _, ok := p.(chartengine.Rect); ok {
			markers++
		}
	}
	require.Equal(t, 3, markers)
}

func TestLineRendererSinglePoint(t *testing.T) {
	t.Parallel()

	ctx := renderContext(scalarPoints(42))
	prims := chartengine.LineRenderer{}.Render(ctx)
	require.Len(t, prims, 1)
	_, ok := prims[0].(chartengine.Rect)
	require.True(t, ok)
}

func TestLineRendererEmptyWindow(t *testing.T) {
	t.Parallel()

	require.Empty(t, chartengine.LineRenderer{}.Render(renderContext(nil)))
	require.Empty(t, chartengine.BarRenderer{}.Render(renderContext(nil)))
	require.Empty(t, chartengine.CandleRenderer{}.Render(renderContext(nil)))
}

func TestRenderersArePure(t *testing.T) {
	t.Parallel()

	pts := scalarPoints(3, 1, 4, 1, 5)
	ctx := renderContext(pts)
	ctx.Selection = chartengine.Selection{Index: 2, Point: &pts[2]}

	for _, r := range []chartengine.Renderer{
		chartengine.LineRenderer{Fill: true, Markers: true},
		chartengine.BarRenderer{},
		chartengine.CandleRenderer{},
	} {
		first := r.Render(ctx)
		second := r.Render(ctx)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%T produced different primitives for identical contexts", r)
		}
	}
}

func TestBarRendererGeometryAndColors(t *testing.T) {
	t.Parallel()

	ctx := renderContext(scalarPoints(5, -5))
	r := chartengine.BarRenderer{
		Baseline: 0,
		Color: func(v float64, _ int) chartengine.Color {
			if v >= 0 {
				return chartengine.ColorUp
			}
			return chartengine.ColorDown
		},
	}
	prims := r.Render(ctx)
	require.Len(t, prims, 2)

	baseY := ctx.Map.ToY(0)

	up, ok := prims[0].(chartengine.Rect)
	require.True(t, ok)
	require.Equal(t, chartengine.ColorUp, up.Color)
	require.InDelta(t, ctx.Map.ToY(5), up.Y, 1e-9)
	require.InDelta(t, baseY-ctx.Map.ToY(5), up.H, 1e-9)

	down, ok := prims[1].(chartengine.Rect)
	require.True(t, ok)
	require.Equal(t, chartengine.ColorDown, down.Color)
	require.InDelta(t, baseY, down.Y, 1e-9)
	require.InDelta(t, ctx.Map.ToY(-5)-baseY, down.H, 1e-9)
}

func TestBarRendererWidthClamp(t *testing.T) {
	t.Parallel()

	// 80px plot: 5 bars get 60% of the slot, crowded and sparse cases clamp.
	for _, tc := range []struct {
		n     int
		width float64
	}{
		{5, 9.6},
		{200, 2},
		{3, 10},
	} {
		ctx := renderContext(scalarPoints(make([]float64, tc.n)...))
		prims := chartengine.BarRenderer{}.Render(ctx)
		require.Len(t, prims, tc.n)
		rect := prims[0].(chartengine.Rect)
		require.InDelta(t, tc.width, rect.W, 1e-9, "n=%d", tc.n)
	}
}

func TestCandleRendererWickAndBody(t *testing.T) {
	t.Parallel()

	pts := []series.Point{
		{Value: series.OHLC{Open: 10, High: 12, Low: 8, Close: 11}},
		{Value: series.OHLC{Open: 11, High: 13, Low: 9, Close: 10}},
	}
	ctx := renderContext(pts)
	prims := chartengine.CandleRenderer{}.Render(ctx)
	require.Len(t, prims, 6)

	// Bullish candle: wick from high to low, body from close down to open.
	move := prims[0].(chartengine.MoveTo)
	wick := prims[1].(chartengine.LineTo)
	body := prims[2].(chartengine.Rect)
	require.InDelta(t, ctx.Map.ToY(12), move.Y, 1e-9)
	require.InDelta(t, ctx.Map.ToY(8), wick.Y, 1e-9)
	require.Equal(t, chartengine.ColorUp, wick.Color)
	require.Equal(t, chartengine.ColorUp, body.Color)
	require.InDelta(t, ctx.Map.ToY(11), body.Y, 1e-9)
	require.InDelta(t, ctx.Map.ToY(10)-ctx.Map.ToY(11), body.H, 1e-9)

	// Bearish candle colors flip.
	require.Equal(t, chartengine.ColorDown, prims[4].(chartengine.LineTo).Color)
	require.Equal(t, chartengine.ColorDown, prims[5].(chartengine.Rect).Color)
}

func TestCandleRendererSkipsScalarPoints(t *testing.T) {
	t.Parallel()

	ctx := renderContext(scalarPoints(1, 2, 3))
	require.Empty(t, chartengine.CandleRenderer{}.Render(ctx))
}

func TestCrosshairOverlayOnSelection(t *testing.T) {
	t.Parallel()

	pts := scalarPoints(10, 20, 30)
	ctx := renderContext(pts)
	ctx.Selection = chartengine.Selection{Index: 1, Point: &pts[1]}

	prims := chartengine.LineRenderer{}.Render(ctx)
	require.Len(t, prims, 6)

	hairTop, ok := prims[3].(chartengine.MoveTo)
	require.True(t, ok)
	hairBottom, ok := prims[4].(chartengine.LineTo)
	require.True(t, ok)
	marker, ok := prims[5].(chartengine.Rect)
	require.True(t, ok)

	x := ctx.Map.ToX(1)
	require.InDelta(t, x, hairTop.X, 1e-9)
	require.InDelta(t, ctx.PlotTop(), hairTop.Y, 1e-9)
	require.InDelta(t, x, hairBottom.X, 1e-9)
	require.InDelta(t, ctx.PlotBottom(), hairBottom.Y, 1e-9)
	require.Equal(t, chartengine.ColorAccent, marker.Color)
}
