package indicator

import (
	"fmt"
)

// Tier buckets a sentiment score into a coarse market mood.
type Tier string

const (
	TierBearish     Tier = "bearish"
	TierLeanBearish Tier = "lean-bearish"
	TierNeutral     Tier = "neutral"
	TierLeanBullish Tier = "lean-bullish"
	TierBullish     Tier = "bullish"
)

// SentimentConfig selects the lookbacks used to build a Snapshot.
type SentimentConfig struct {
	ShortSMA  int
	LongSMA   int
	RSIPeriod int
}

// DefaultSentimentConfig mirrors the common 50/200-day setup with RSI(14).
func DefaultSentimentConfig() SentimentConfig {
	return SentimentConfig{ShortSMA: 50, LongSMA: 200, RSIPeriod: 14}
}

func (c SentimentConfig) validate() error {
	if c.ShortSMA <= 0 || c.LongSMA <= 0 || c.RSIPeriod <= 0 {
		return fmt.Errorf("indicator: sentiment lookbacks must be positive: %+v", c)
	}
	if c.ShortSMA > c.LongSMA {
		return fmt.Errorf("indicator: short SMA %d exceeds long SMA %d", c.ShortSMA, c.LongSMA)
	}
	return nil
}

// Snapshot holds the raw indicator readings the factor scores consume.
type Snapshot struct {
	Last     float64
	ShortSMA float64
	LongSMA  float64
	RSI      float64
}

// Factor is one scored component of the composite.
type Factor struct {
	Name     string
	Raw      float64 // in [-2, +2]
	Weight   float64
	Weighted float64
	Detail   string
}

// Summary is the composite sentiment reading.
//
// Score sits in [-100, +100]: negative is bearish pressure, positive is
// bullish pressure.
type Summary struct {
	Score   float64
	Tier    Tier
	Factors []Factor
}

// Sentiment computes the composite reading from a close series.
func Sentiment(closes []float64, cfg SentimentConfig) (Summary, error) {
	snap, err := Compute(closes, cfg)
	if err != nil {
		return Summary{}, err
	}
	return ScoreSnapshot(snap), nil
}

// Compute derives a Snapshot from closes. It needs enough samples for the
// long moving average and the RSI warm-up.
func Compute(closes []float64, cfg SentimentConfig) (Snapshot, error) {
	if err := cfg.validate(); err != nil {
		return Snapshot{}, err
	}

	long, err := SMA(closes, cfg.LongSMA)
	if err != nil {
		return Snapshot{}, err
	}
	short, err := SMA(closes, cfg.ShortSMA)
	if err != nil {
		return Snapshot{}, err
	}
	rsi, err := RSI(closes, cfg.RSIPeriod)
	if err != nil {
		return Snapshot{}, err
	}

	last := len(closes) - 1
	return Snapshot{
		Last:     closes[last],
		ShortSMA: short[last],
		LongSMA:  long[last],
		RSI:      rsi[last],
	}, nil
}

// SentimentSeries scores every bar of a close series, producing a composite
// reading over time. The result is aligned to the source length with the
// warm-up prefix zero-filled; SentimentWarmup reports where real scores
// begin.
func SentimentSeries(closes []float64, cfg SentimentConfig) ([]float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	long, err := SMA(closes, cfg.LongSMA)
	if err != nil {
		return nil, err
	}
	short, err := SMA(closes, cfg.ShortSMA)
	if err != nil {
		return nil, err
	}
	rsi, err := RSI(closes, cfg.RSIPeriod)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(closes))
	for i := SentimentWarmup(cfg); i < len(closes); i++ {
		scores[i] = ScoreSnapshot(Snapshot{
			Last:     closes[i],
			ShortSMA: short[i],
			LongSMA:  long[i],
			RSI:      rsi[i],
		}).Score
	}
	return scores, nil
}

// SentimentWarmup returns the index of the first bar SentimentSeries can
// score: both the long moving average and the RSI must have warmed up.
func SentimentWarmup(cfg SentimentConfig) int {
	w := FirstValid(cfg.LongSMA)
	if r := FirstValid(cfg.RSIPeriod) + 1; r > w {
		w = r
	}
	return w
}

// ScoreSnapshot turns raw readings into the weighted composite. Each factor
// lands in [-2, +2]; the weighted sum is scaled by 50 so the composite spans
// [-100, +100].
func ScoreSnapshot(s Snapshot) Summary {
	factors := []Factor{
		scoreLongTrendDeviation(s),
		scoreRSI(s),
		scoreAlignment(s),
	}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	score := total * 50
	if score > 100 {
		score = 100
	}
	if score < -100 {
		score = -100
	}

	return Summary{Score: score, Tier: tierFor(score), Factors: factors}
}

func tierFor(score float64) Tier {
	switch {
	case score <= -60:
		return TierBearish
	case score <= -20:
		return TierLeanBearish
	case score < 20:
		return TierNeutral
	case score < 60:
		return TierLeanBullish
	default:
		return TierBullish
	}
}

// scoreLongTrendDeviation scores how far price sits from the long average.
// Weight: 0.45.
func scoreLongTrendDeviation(s Snapshot) Factor {
	const weight = 0.45
	if s.LongSMA == 0 {
		return Factor{Name: "long trend", Weight: weight, Detail: "long SMA unavailable"}
	}
	dev := (s.Last - s.LongSMA) / s.LongSMA * 100

	var raw float64
	switch {
	case dev <= -20:
		raw = -2.0
	case dev <= -10:
		raw = -1.5
	case dev <= -5:
		raw = -1.0
	case dev < 0:
		raw = -0.5
	case dev < 5:
		raw = 0
	case dev < 10:
		raw = 0.5
	case dev < 15:
		raw = 1.0
	case dev < 20:
		raw = 1.5
	default:
		raw = 2.0
	}

	return Factor{
		Name:     "long trend",
		Raw:      raw,
		Weight:   weight,
		Weighted: raw * weight,
		Detail:   fmt.Sprintf("%+.1f%% vs long SMA", dev),
	}
}

// scoreRSI scores momentum from the latest RSI reading.
// Weight: 0.30.
func scoreRSI(s Snapshot) Factor {
	const weight = 0.30
	rsi := s.RSI

	var raw float64
	switch {
	case rsi <= 20:
		raw = -2.0
	case rsi <= 30:
		raw = -1.5
	case rsi <= 40:
		raw = -1.0
	case rsi <= 45:
		raw = -0.5
	case rsi < 55:
		raw = 0
	case rsi < 60:
		raw = 0.5
	case rsi < 70:
		raw = 1.0
	case rsi < 80:
		raw = 1.5
	default:
		raw = 2.0
	}

	return Factor{
		Name:     "momentum",
		Raw:      raw,
		Weight:   weight,
		Weighted: raw * weight,
		Detail:   fmt.Sprintf("RSI=%.0f", rsi),
	}
}

// scoreAlignment scores the ordering of price against both averages.
// Weight: 0.25.
func scoreAlignment(s Snapshot) Factor {
	const weight = 0.25
	bullish := s.Last > s.ShortSMA && s.ShortSMA > s.LongSMA
	bearish := s.Last < s.ShortSMA && s.ShortSMA < s.LongSMA

	var raw float64
	var detail string
	switch {
	case bullish:
		raw = 1.5
		detail = "price above both averages"
	case bearish:
		raw = -1.5
		detail = "price below both averages"
	case s.Last > s.ShortSMA:
		raw = 0.5
		detail = "price above short average"
	case s.Last < s.ShortSMA:
		raw = -0.5
		detail = "price below short average"
	default:
		detail = "mixed"
	}

	return Factor{
		Name:     "alignment",
		Raw:      raw,
		Weight:   weight,
		Weighted: raw * weight,
		Detail:   detail,
	}
}
