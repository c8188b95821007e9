package tui

import (
	"time"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/indicator"
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/series"
)

// PanelView selects which series a panel charts. Every view runs on the same
// engine; switching re-derives the dataset from the candle history.
type PanelView string

const (
	ViewPrice     PanelView = "price"
	ViewVolume    PanelView = "volume"
	ViewRSI       PanelView = "rsi"
	ViewATR       PanelView = "atr"
	ViewSentiment PanelView = "sentiment"
)

// viewCycle is the order the view hotkey walks through.
var viewCycle = []PanelView{ViewPrice, ViewVolume, ViewRSI, ViewATR, ViewSentiment}

// Lookbacks for the derived views and the price overlay.
const (
	viewRSIPeriod    = 14
	viewATRPeriod    = 14
	emaOverlayPeriod = 20
)

// Next returns the view after v in the cycle.
func (v PanelView) Next() PanelView {
	for i, view := range viewCycle {
		if view == v {
			return viewCycle[(i+1)%len(viewCycle)]
		}
	}
	return viewCycle[0]
}

// viewDataset derives the charted points for a view. Indicator views trim
// the warm-up prefix, so their series start later than the candle history;
// a nil result means the history is too short for the view.
func viewDataset(view PanelView, candles []marketdata.Candle) []series.Point {
	switch view {
	case ViewVolume:
		return marketdata.VolumePoints(candles)

	case ViewRSI:
		rsi, err := indicator.RSI(marketdata.Closes(candles), viewRSIPeriod)
		if err != nil {
			return nil
		}
		first := indicator.FirstValid(viewRSIPeriod) + 1
		return series.FromScalars(candleTimes(candles)[first:], rsi[first:])

	case ViewATR:
		atr, err := indicator.ATR(
			marketdata.Highs(candles),
			marketdata.Lows(candles),
			marketdata.Closes(candles),
			viewATRPeriod,
		)
		if err != nil {
			return nil
		}
		first := indicator.FirstValid(viewATRPeriod) + 1
		return series.FromScalars(candleTimes(candles)[first:], atr[first:])

	case ViewSentiment:
		cfg := indicator.DefaultSentimentConfig()
		scores, err := indicator.SentimentSeries(marketdata.Closes(candles), cfg)
		if err != nil {
			return nil
		}
		first := indicator.SentimentWarmup(cfg)
		return series.FromScalars(candleTimes(candles)[first:], scores[first:])

	default:
		return marketdata.Points(candles)
	}
}

func candleTimes(candles []marketdata.Candle) []time.Time {
	out := make([]time.Time, len(candles))
	for i, c := range candles {
		out[i] = c.Time
	}
	return out
}

// rendererFor resolves the engine renderer for one frame. The style cycle
// shapes the price view; the derived views each have a canonical form:
// volume bars colored by candle direction, indicator lines, sentiment bars
// around the zero line.
func (p *ChartPanel) rendererFor(ctx *chartengine.Context) chartengine.Renderer {
	switch p.view {
	case ViewVolume:
		start := p.chart.Viewport().Start
		candles := p.candles
		return chartengine.BarRenderer{
			Baseline: ctx.Range.Min,
			Color: func(_ float64, i int) chartengine.Color {
				if idx := start + i; idx < len(candles) && candles[idx].Close < candles[idx].Open {
					return chartengine.ColorDown
				}
				return chartengine.ColorUp
			},
		}

	case ViewRSI, ViewATR:
		return chartengine.LineRenderer{}

	case ViewSentiment:
		return chartengine.BarRenderer{
			Baseline: 0,
			Color: func(v float64, _ int) chartengine.Color {
				if v < 0 {
					return chartengine.ColorDown
				}
				return chartengine.ColorUp
			},
		}
	}

	switch p.style {
	case StyleLine:
		return chartengine.LineRenderer{}
	case StyleArea:
		return chartengine.LineRenderer{Fill: true}
	case StyleBars:
		pts := ctx.Points
		return chartengine.BarRenderer{
			Baseline: ctx.Range.Min,
			Color: func(v float64, i int) chartengine.Color {
				if i > 0 && v < pts[i-1].Value.Primary() {
					return chartengine.ColorDown
				}
				return chartengine.ColorUp
			},
		}
	default:
		return chartengine.CandleRenderer{}
	}
}

// emaOverlay draws the moving-average ribbon on the price view: a muted
// polyline through the EMA of the closes, skipping its warm-up prefix.
func (p *ChartPanel) emaOverlay(ctx *chartengine.Context) []chartengine.Primitive {
	if p.view != ViewPrice || len(p.ema) == 0 {
		return nil
	}

	start := p.chart.Viewport().Start
	first := indicator.FirstValid(emaOverlayPeriod)

	var prims []chartengine.Primitive
	for i := range ctx.VisibleLength() {
		idx := start + i
		if idx >= len(p.ema) {
			break
		}
		if idx < first {
			continue
		}
		x, y := ctx.Map.ToX(i), ctx.Map.ToY(p.ema[idx])
		if len(prims) == 0 {
			prims = append(prims, chartengine.MoveTo{X: x, Y: y})
			continue
		}
		prims = append(prims, chartengine.LineTo{X: x, Y: y, Color: chartengine.ColorMuted})
	}
	if len(prims) < 2 {
		return nil
	}
	return prims
}
