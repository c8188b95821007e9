package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotelab/tickmark/internal/marketdata"
)

// historyTimeout caps one full history fetch across all symbols.
const historyTimeout = 45 * time.Second

// redrawInterval drives staleness markers and other clock-driven repaints.
const redrawInterval = time.Second

// flashDuration is how long status bar flashes stay up.
const flashDuration = 4 * time.Second

// HistoryProvider fetches daily candles per symbol. Implemented by
// marketdata.HistoryClient and by the synthetic source in demo mode.
type HistoryProvider interface {
	FetchAll(ctx context.Context, symbols []string, days int) (map[string][]marketdata.Candle, error)
}

// loadHistoryCmd fetches history for all symbols off the update loop.
func loadHistoryCmd(provider HistoryProvider, symbols []string, days int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()

		data, err := provider.FetchAll(ctx, symbols, days)
		if err != nil {
			return historyFailedMsg{err: err}
		}
		return historyLoadedMsg{data: data}
	}
}

// waitForTick blocks on the live tick channel and feeds the next trade into
// the update loop. Re-armed after every TickMsg.
func waitForTick(ch <-chan marketdata.Tick) tea.Cmd {
	return func() tea.Msg {
		tick, ok := <-ch
		if !ok {
			return tickStreamClosedMsg{}
		}
		return TickMsg{Tick: tick}
	}
}

// waitForWake blocks on a chart's wake channel so queued gesture and timer
// commands get drained on the update loop. Re-armed after every wake.
func waitForWake(symbol string, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return engineWakeMsg{symbol: symbol}
	}
}

// redrawClock re-renders once a second for time-driven indicators.
func redrawClock() tea.Cmd {
	return tea.Tick(redrawInterval, func(time.Time) tea.Msg {
		return redrawTickMsg{}
	})
}

// clearFlashAfter expires the status flash identified by id.
func clearFlashAfter(id uint64) tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg{id: id}
	})
}
