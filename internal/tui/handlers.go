package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/store"
)

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.computeLayout()
}

// handleKeyMsg routes keys by mode: help overlay, alert entry, then the
// global key map.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.IsActive() {
		_, cmd := m.help.Update(msg)
		return m, cmd
	}

	if m.alertEntry != nil {
		return m, m.handleAlertEntryKey(msg)
	}

	key := normalizeKey(msg.String())
	if key == "h" || key == "?" {
		m.help.Toggle()
		return m, nil
	}

	if handler, ok := m.keyMap[key]; ok {
		return m, handler(m, msg)
	}
	return m, nil
}

func (m *Model) handleQuit(_ tea.KeyMsg) tea.Cmd {
	m.Close()
	return tea.Quit
}

func (m *Model) handleRefresh(_ tea.KeyMsg) tea.Cmd {
	m.loading = true
	m.loadErr = nil
	return tea.Batch(
		m.setFlash("refreshing history"),
		loadHistoryCmd(m.provider, m.symbols, m.cfg.HistoryDays),
	)
}

func (m *Model) handleToggleSidebar(_ tea.KeyMsg) tea.Cmd {
	if err := m.ui.SetSidebarVisible(!m.ui.SidebarVisible()); err != nil {
		m.logger.CaptureWarn("tui: persist sidebar toggle", "error", err)
	}
	m.computeLayout()
	return nil
}

func (m *Model) handleFocusNext(_ tea.KeyMsg) tea.Cmd {
	m.grid.FocusNext(1)
	return nil
}

func (m *Model) handleFocusPrev(_ tea.KeyMsg) tea.Cmd {
	m.grid.FocusNext(-1)
	return nil
}

func (m *Model) handlePrevPage(_ tea.KeyMsg) tea.Cmd {
	m.grid.Navigate(-1)
	return nil
}

func (m *Model) handleNextPage(_ tea.KeyMsg) tea.Cmd {
	m.grid.Navigate(1)
	return nil
}

func (m *Model) handleZoomIn(_ tea.KeyMsg) tea.Cmd {
	if p := m.grid.FocusedPanel(); p != nil {
		p.HandleWheel(true)
	}
	return nil
}

func (m *Model) handleZoomOut(_ tea.KeyMsg) tea.Cmd {
	if p := m.grid.FocusedPanel(); p != nil {
		p.HandleWheel(false)
	}
	return nil
}

func (m *Model) handleResetView(_ tea.KeyMsg) tea.Cmd {
	if p := m.grid.FocusedPanel(); p != nil {
		p.ResetView()
	}
	return nil
}

// handleCycleStyle switches every panel to the next render style and
// persists the choice.
func (m *Model) handleCycleStyle(_ tea.KeyMsg) tea.Cmd {
	next := m.ui.Renderer().Next()
	if err := m.ui.SetRenderer(next); err != nil {
		m.logger.CaptureWarn("tui: persist render style", "error", err)
	}
	for _, p := range m.grid.Panels() {
		p.SetStyle(next)
	}
	return m.setFlash(fmt.Sprintf("style: %s", next))
}

// handleCycleView switches the focused panel to the next charted series.
func (m *Model) handleCycleView(_ tea.KeyMsg) tea.Cmd {
	p := m.grid.FocusedPanel()
	if p == nil {
		return nil
	}
	p.SetViewMode(p.ViewMode().Next())
	return m.setFlash(fmt.Sprintf("%s view: %s", p.Symbol(), p.ViewMode()))
}

func (m *Model) handleEnterAlertEntry(_ tea.KeyMsg) tea.Cmd {
	p := m.grid.FocusedPanel()
	if p == nil {
		return nil
	}
	if m.store == nil {
		return m.setFlash("alerts are disabled (no store)")
	}
	m.alertEntry = &alertEntry{symbol: p.Symbol()}
	return nil
}

func (m *Model) handleClearAlerts(_ tea.KeyMsg) tea.Cmd {
	p := m.grid.FocusedPanel()
	if p == nil || m.store == nil {
		return nil
	}
	symbol := p.Symbol()
	active := m.alerts[symbol]
	if len(active) == 0 {
		return m.setFlash(fmt.Sprintf("no alerts on %s", symbol))
	}
	for _, a := range active {
		if err := m.store.DeleteAlert(a.ID); err != nil {
			m.logger.CaptureError(fmt.Errorf("tui: delete alert %s: %w", a.ID, err))
		}
	}
	delete(m.alerts, symbol)
	return m.setFlash(fmt.Sprintf("alerts cleared: %s", symbol))
}

// handleAlertEntryKey edits the threshold buffer while alert entry is active.
func (m *Model) handleAlertEntryKey(msg tea.KeyMsg) tea.Cmd {
	entry := m.alertEntry

	switch key := msg.String(); key {
	case "esc":
		m.alertEntry = nil
		return nil
	case "enter":
		m.alertEntry = nil
		return m.commitAlert(entry)
	case "backspace":
		if len(entry.buf) > 0 {
			entry.buf = entry.buf[:len(entry.buf)-1]
		}
		return nil
	default:
		if len(key) == 1 && len(entry.buf) < 12 {
			if key[0] >= '0' && key[0] <= '9' || key[0] == '.' {
				entry.buf += key
			}
		}
		return nil
	}
}

// commitAlert parses the typed threshold and stores the alert. The direction
// is inferred from the last trade: thresholds above it fire on the way up,
// the rest on the way down.
func (m *Model) commitAlert(entry *alertEntry) tea.Cmd {
	threshold, err := strconv.ParseFloat(entry.buf, 64)
	if err != nil || threshold <= 0 {
		return m.setFlash(fmt.Sprintf("alert: bad threshold %q", entry.buf))
	}

	p := m.panels[entry.symbol]
	if p == nil {
		return nil
	}

	dir := store.DirectionAbove
	if threshold <= p.LastPrice() {
		dir = store.DirectionBelow
	}

	alert, err := m.store.AddAlert(entry.symbol, threshold, dir)
	if err != nil {
		m.logger.CaptureError(fmt.Errorf("tui: add alert: %w", err))
		return m.setFlash("alert: save failed")
	}
	m.alerts[entry.symbol] = append(m.alerts[entry.symbol], alert)

	return m.setFlash(fmt.Sprintf("alert set: %s %s %s", entry.symbol, dir, formatPrice(threshold)))
}

// gridHit locates a mouse event inside one chart cell.
type gridHit struct {
	row, col       int
	localX, localY int
}

// hitTest maps terminal coordinates into grid cell coordinates. localX/Y are
// relative to the chart body, after the cell border and title line.
func (m *Model) hitTest(x, y int) (gridHit, bool) {
	gx := x - m.gridOriginX()
	gy := y - GridHeaderHeight
	if gx < 0 || gy < 0 {
		return gridHit{}, false
	}

	dims := m.grid.Dims()
	if dims.CellWWithPadding <= 0 || dims.CellHWithPadding <= 0 {
		return gridHit{}, false
	}

	col := gx / dims.CellWWithPadding
	row := gy / dims.CellHWithPadding

	return gridHit{
		row:    row,
		col:    col,
		localX: gx - col*dims.CellWWithPadding - 1,
		localY: gy - row*dims.CellHWithPadding - 1 - ChartTitleHeight,
	}, true
}

func (m *Model) gridOriginX() int {
	if m.ui.SidebarVisible() {
		return m.sidebar.Width()
	}
	return 0
}

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help.IsActive() {
		_, cmd := m.help.Update(msg)
		return m, cmd
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if hit, ok := m.hitTest(msg.X, msg.Y); ok {
			if p := m.grid.PanelAt(hit.row, hit.col); p != nil {
				p.HandleWheel(msg.Button == tea.MouseButtonWheelUp)
			}
		}
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.handleLeftClick(msg.X, msg.Y)
		return m, nil
	}

	return m, nil
}

// handleLeftClick focuses what was clicked: a sidebar row focuses its
// symbol, a chart cell focuses the panel and places the crosshair.
func (m *Model) handleLeftClick(x, y int) {
	if m.ui.SidebarVisible() && x < m.sidebar.Width() {
		row := m.sidebar.RowAt(y, m.grid.PanelCount())
		if row >= 0 {
			m.grid.FocusSymbol(m.grid.Panels()[row].Symbol())
		}
		return
	}

	hit, ok := m.hitTest(x, y)
	if !ok {
		return
	}
	p := m.grid.HandleClick(hit.row, hit.col)
	if p == nil {
		return
	}
	p.HandleClick(hit.localX, hit.localY)
}

func (m *Model) onHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.loadErr = nil

	for symbol, candles := range msg.data {
		if p := m.panels[symbol]; p != nil {
			p.SetHistory(candles)
		}
	}

	return m, m.setFlash(fmt.Sprintf("history loaded: %d symbols", len(msg.data)))
}

func (m *Model) onHistoryFailed(msg historyFailedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.loadErr = msg.err
	m.logger.CaptureError(fmt.Errorf("tui: history load: %w", msg.err))
	return m, nil
}

func (m *Model) onTick(msg TickMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.ticks != nil {
		cmds = append(cmds, waitForTick(m.ticks))
	}

	t := msg.Tick
	if p := m.panels[t.Symbol]; p != nil {
		p.ApplyTick(t)
		if text := m.fireAlerts(t); text != "" {
			cmds = append(cmds, m.setFlash(text))
		}
	}

	return m, tea.Batch(cmds...)
}

// fireAlerts checks the tick against active alerts, marks crossed ones
// triggered and returns the flash text for the last one fired.
func (m *Model) fireAlerts(t marketdata.Tick) string {
	active := m.alerts[t.Symbol]
	if len(active) == 0 {
		return ""
	}

	var fired []store.Alert
	remaining := active[:0]
	for _, a := range active {
		if a.Crossed(t.Price) {
			fired = append(fired, a)
			continue
		}
		remaining = append(remaining, a)
	}
	m.alerts[t.Symbol] = remaining

	if len(fired) == 0 {
		return ""
	}
	if m.store != nil {
		for _, a := range fired {
			if err := m.store.MarkTriggered(a.ID, t.Time); err != nil {
				m.logger.CaptureError(fmt.Errorf("tui: mark alert %s: %w", a.ID, err))
			}
		}
	}

	last := fired[len(fired)-1]
	return fmt.Sprintf("⚑ %s crossed %s (%s)", t.Symbol, formatPrice(last.Threshold), last.Direction)
}

func (m *Model) onEngineWake(msg engineWakeMsg) (tea.Model, tea.Cmd) {
	p := m.panels[msg.symbol]
	if p == nil {
		return m, nil
	}
	p.DrainAndDraw()
	return m, waitForWake(msg.symbol, p.Chart().Wake())
}

// onRedrawTick re-arms the redraw clock and surfaces any captures the logger
// forwarded since the last tick.
func (m *Model) onRedrawTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{redrawClock()}

	if m.captures != nil {
		if msgs := m.captures.Drain(); len(msgs) > 0 {
			cmds = append(cmds, m.setFlash("⚠ "+msgs[len(msgs)-1]))
		}
	}

	return m, tea.Batch(cmds...)
}
