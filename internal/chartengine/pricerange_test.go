package chartengine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/series"
)

func scalarPoints(values ...float64) []series.Point {
	pts := make([]series.Point, len(values))
	for i, v := range values {
		pts[i] = series.Point{Value: series.Scalar(v)}
	}
	return pts
}

func TestComputeRangeScalars(t *testing.T) {
	t.Parallel()

	rng := chartengine.ComputeRange(scalarPoints(10, 20, 15), chartengine.DefaultRange)

	// Raw span 10..20 padded by 5% of 10 on both ends.
	require.InDelta(t, 9.5, rng.Min, 1e-9)
	require.InDelta(t, 20.5, rng.Max, 1e-9)
}

func TestComputeRangeOHLCUsesLowAndHigh(t *testing.T) {
	t.Parallel()

	pts := []series.Point{
		{Value: series.OHLC{Open: 9, High: 10, Low: 8, Close: 9}},
		{Value: series.OHLC{Open: 8, High: 12, Low: 7, Close: 11}},
		{Value: series.OHLC{Open: 7, High: 9, Low: 6, Close: 8}},
	}
	rng := chartengine.ComputeRange(pts, chartengine.DefaultRange)

	// Raw range {6, 12}, then 5% of the span 6 on each side.
	require.InDelta(t, 6-0.3, rng.Min, 1e-9)
	require.InDelta(t, 12+0.3, rng.Max, 1e-9)
}

func TestComputeRangeEmptyWindowFallsBack(t *testing.T) {
	t.Parallel()

	fallback := chartengine.ValueRange{Min: 1, Max: 2}
	require.Equal(t, fallback, chartengine.ComputeRange(nil, fallback))

	// A useless fallback degrades to the fixed default.
	rng := chartengine.ComputeRange(nil, chartengine.ValueRange{})
	require.Equal(t, chartengine.DefaultRange, rng)
}

func TestComputeRangeDegenerateWindowGetsMinimumSpan(t *testing.T) {
	t.Parallel()

	rng := chartengine.ComputeRange(scalarPoints(5, 5, 5), chartengine.DefaultRange)

	require.Greater(t, rng.Max, rng.Min)
	require.GreaterOrEqual(t, rng.Span(), 0.001)
	require.InDelta(t, 5, (rng.Min+rng.Max)/2, 1e-9)
}

func TestComputeRangeSkipsNonFiniteSamples(t *testing.T) {
	t.Parallel()

	pts := scalarPoints(math.NaN(), 10, 20, math.Inf(1))
	rng := chartengine.ComputeRange(pts, chartengine.DefaultRange)

	require.InDelta(t, 9.5, rng.Min, 1e-9)
	require.InDelta(t, 20.5, rng.Max, 1e-9)

	// Nothing finite at all behaves like an empty window.
	rng = chartengine.ComputeRange(scalarPoints(math.NaN()), chartengine.ValueRange{Min: 0, Max: 1})
	require.Equal(t, chartengine.ValueRange{Min: 0, Max: 1}, rng)
}
