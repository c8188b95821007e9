// Package series defines the immutable time-series data model consumed by
// the chart engine. A dataset is an ordered slice of points, ascending by
// time, replaced wholesale on every refresh.
package series

import "time"

// Value is one sample's payload: either a Scalar or an OHLC quadruple.
// Renderers and the range calculator stay shape-agnostic through it.
type Value interface {
	// Bounds returns the lowest and highest value covered by the sample.
	Bounds() (low, high float64)

	// Primary returns the representative value used for scalar rendering,
	// hit testing and selection readouts.
	Primary() float64
}

// Scalar is a single-valued sample (an indicator reading, a volume, a close).
type Scalar float64

func (s Scalar) Bounds() (float64, float64) { return float64(s), float64(s) }

func (s Scalar) Primary() float64 { return float64(s) }

// OHLC is an open/high/low/close quadruple for one time bucket.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

func (o OHLC) Bounds() (float64, float64) { return o.Low, o.High }

// Primary returns the close, which is what indicators and readouts key on.
func (o OHLC) Primary() float64 { return o.Close }

// Bullish reports whether the bucket closed at or above its open.
func (o OHLC) Bullish() bool { return o.Close >= o.Open }

// Point is one sample of a dataset. Points are never mutated after they are
// handed to a chart; Extras carries optional display-only values (volume,
// indicator readings) keyed by name.
type Point struct {
	Time   time.Time
	Value  Value
	Extras map[string]any
}

// FromScalars pairs times with scalar values. Both slices must have the same
// length; extra entries on either side are dropped.
func FromScalars(times []time.Time, values []float64) []Point {
	n := min(len(times), len(values))
	pts := make([]Point, 0, n)
	for i := range n {
		pts = append(pts, Point{Time: times[i], Value: Scalar(values[i])})
	}
	return pts
}
