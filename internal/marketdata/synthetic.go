package marketdata

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic generates deterministic random-walk candles for demo mode and
// tests. The same seed always yields the same series.
type Synthetic struct {
	rng   *rand.Rand
	price float64
	vol   float64
}

// NewSynthetic returns a generator seeded for reproducibility, starting
// the walk at base with per-step volatility vol (as a fraction of price).
func NewSynthetic(seed int64, base, vol float64) *Synthetic {
	if base <= 0 {
		base = 100
	}
	if vol <= 0 {
		vol = 0.02
	}
	return &Synthetic{
		rng:   rand.New(rand.NewSource(seed)),
		price: base,
		vol:   vol,
	}
}

// Candles produces n bars stepping forward from start by step.
func (s *Synthetic) Candles(n int, start time.Time, step time.Duration) []Candle {
	out := make([]Candle, 0, n)
	at := start
	for range n {
		out = append(out, s.next(at))
		at = at.Add(step)
	}
	return out
}

// Next continues the walk with a single bar stamped at.
func (s *Synthetic) Next(at time.Time) Candle {
	return s.next(at)
}

func (s *Synthetic) next(at time.Time) Candle {
	open := s.price

	drift := s.rng.NormFloat64() * s.vol * open
	close := open + drift
	if close < 0.01 {
		close = 0.01
	}

	spread := math.Abs(s.rng.NormFloat64()) * s.vol * open * 0.5
	high := math.Max(open, close) + spread
	low := math.Min(open, close) - spread
	if low < 0.01 {
		low = 0.01
	}

	s.price = close
	return Candle{
		Time:   at,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: float64(s.rng.Intn(9000) + 1000),
	}
}
