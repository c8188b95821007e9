// Package marketdata fetches, streams and synthesizes OHLCV series.
package marketdata

import (
	"time"

	"github.com/quotelab/tickmark/internal/series"
)

// Candle is one aggregated OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Tick is a single trade print from a live stream.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// Closes extracts the close column.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high column.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low column.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Points converts candles into chart points carrying full OHLC values.
// Volume rides along in the point extras.
func Points(candles []Candle) []series.Point {
	out := make([]series.Point, len(candles))
	for i, c := range candles {
		out[i] = series.Point{
			Time: c.Time,
			Value: series.OHLC{
				Open:  c.Open,
				High:  c.High,
				Low:   c.Low,
				Close: c.Close,
			},
			Extras: map[string]any{"volume": c.Volume},
		}
	}
	return out
}

// VolumePoints converts candles into scalar chart points using the volume.
func VolumePoints(candles []Candle) []series.Point {
	out := make([]series.Point, len(candles))
	for i, c := range candles {
		out[i] = series.Point{Time: c.Time, Value: series.Scalar(c.Volume)}
	}
	return out
}
