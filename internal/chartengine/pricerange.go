package chartengine

import (
	"math"

	"github.com/quotelab/tickmark/internal/series"
)

const (
	// rangePadding widens the raw min/max by 5% on both ends so extremes
	// never sit on the plot border.
	rangePadding = 0.05

	// minRangeSpan is the smallest pre-padding span. Windows whose values
	// are all equal are widened to it so ToY never divides by zero.
	minRangeSpan = 0.001
)

// DefaultRange is the range used when no data is visible.
var DefaultRange = ValueRange{Min: 0, Max: 100}

// ComputeRange derives the padded value range over a visible window. Scalar
// points contribute their value, OHLC points their low and high. Non-finite
// samples are skipped. An empty window (or one with no finite samples)
// yields fallback, and a degenerate window is widened to minRangeSpan, so
// the result always has a positive span.
func ComputeRange(points []series.Point, fallback ValueRange) ValueRange {
	if fallback.Span() <= 0 {
		fallback = DefaultRange
	}
	if len(points) == 0 {
		return fallback
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		l, h := p.Value.Bounds()
		if !isFinite(l) || !isFinite(h) {
			continue
		}
		if l < lo {
			lo = l
		}
		if h > hi {
			hi = h
		}
	}
	if lo > hi {
		return fallback
	}

	if span := hi - lo; span < minRangeSpan {
		grow := (minRangeSpan - span) / 2
		lo -= grow
		hi += grow
	}

	pad := (hi - lo) * rangePadding
	return ValueRange{Min: lo - pad, Max: hi + pad}
}
