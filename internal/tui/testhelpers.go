// Test<API> provides a controlled interface for testing internal model state.
// These methods are only exposed for tests in the tui_test package.
package tui

import (
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/store"
)

// TestInjectHistory feeds a history result into the update loop.
func (m *Model) TestInjectHistory(data map[string][]marketdata.Candle) {
	m.Update(historyLoadedMsg{data: data})
}

// TestInjectHistoryError feeds a history failure into the update loop.
func (m *Model) TestInjectHistoryError(err error) {
	m.Update(historyFailedMsg{err: err})
}

// TestFocusedSymbol returns the focused panel's symbol, or "".
func (m *Model) TestFocusedSymbol() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	p := m.grid.FocusedPanel()
	if p == nil {
		return ""
	}
	return p.Symbol()
}

// TestPanel returns the panel for a symbol.
func (m *Model) TestPanel(symbol string) *ChartPanel {
	return m.panels[symbol]
}

// TestGrid returns the panel grid.
func (m *Model) TestGrid() *PanelGrid {
	return m.grid
}

// TestStatusLine returns the rendered left side of the status bar.
func (m *Model) TestStatusLine() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.statusLeft()
}

// TestFlash returns the current status flash text.
func (m *Model) TestFlash() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.statusFlash
}

// TestAlerts returns the cached active alerts for a symbol.
func (m *Model) TestAlerts(symbol string) []store.Alert {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.alerts[symbol]
}

// TestAlertEntryActive reports whether alert threshold entry is open.
func (m *Model) TestAlertEntryActive() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.alertEntry != nil
}

// TestLeftClick routes a click through the mouse hit testing.
func (m *Model) TestLeftClick(x, y int) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.handleLeftClick(x, y)
}

// TestDrainPanels applies queued engine commands on every panel.
func (m *Model) TestDrainPanels() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	for _, p := range m.panels {
		p.DrainAndDraw()
	}
}

// TestHelpActive reports whether the help overlay is shown.
func (m *Model) TestHelpActive() bool {
	return m.help.IsActive()
}

// TestRedrawTick feeds one redraw clock tick into the update loop.
func (m *Model) TestRedrawTick() {
	m.Update(redrawTickMsg{})
}
