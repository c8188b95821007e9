package tui

import (
	"github.com/quotelab/tickmark/internal/marketdata"
)

// TickMsg carries one live trade into the update loop. Exported so hosts and
// tests can inject ticks without a stream.
type TickMsg struct {
	Tick marketdata.Tick
}

// tickStreamClosedMsg reports that the tick channel closed and no more live
// prices will arrive.
type tickStreamClosedMsg struct{}

// historyLoadedMsg delivers the fetched candle history, keyed by symbol.
type historyLoadedMsg struct {
	data map[string][]marketdata.Candle
}

// historyFailedMsg reports that the history fetch failed.
type historyFailedMsg struct {
	err error
}

// engineWakeMsg signals that a chart's command queue has work to drain.
type engineWakeMsg struct {
	symbol string
}

// redrawTickMsg drives time-sensitive repaints: staleness markers and the
// selection countdown.
type redrawTickMsg struct{}

// clearFlashMsg expires a status bar flash. The id guards against clearing
// a newer flash than the one this timer was armed for.
type clearFlashMsg struct {
	id uint64
}
