// Package tui is the terminal host: a Bubble Tea program whose update loop
// owns every chart engine, with live prices, a watchlist sidebar, price
// alerts and a paged grid of chart panels.
package tui

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/config"
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/store"
)

// Version is reported on the help screen and by the -version flag.
const Version = "0.4.0"

// defaultStaleAfter marks a symbol stale when no tick arrived for this long.
const defaultStaleAfter = 15 * time.Second

// Deps wires the model to the rest of the application. Config, History and
// Logger are required; Store and Ticks are optional and degrade features
// (alerts, liveness) when absent. Captures, when set, should be the sink of
// the logger so captured problems surface in the status bar.
type Deps struct {
	Config   *config.Config
	UI       *UIConfig
	Store    *store.Store
	History  HistoryProvider
	Ticks    <-chan marketdata.Tick
	Logger   *observability.CoreLogger
	Captures *observability.CaptureBuffer
}

// alertEntry is the numeric input mode for setting a price alert.
type alertEntry struct {
	symbol string
	buf    string
}

// Model is the root Bubble Tea model. Update and View take the state lock;
// everything underneath (grid, panels, engines) is single-threaded behind it.
type Model struct {
	stateMu sync.RWMutex

	cfg       *config.Config
	ui        *UIConfig
	store     *store.Store
	provider  HistoryProvider
	ticks     <-chan marketdata.Tick
	hasStream bool
	logger    *observability.CoreLogger
	captures  *observability.CaptureBuffer

	width  int
	height int

	loading bool
	loadErr error

	symbols []string
	panels  map[string]*ChartPanel
	grid    *PanelGrid
	sidebar *Sidebar
	help    *HelpModel

	keyMap map[string]func(*Model, tea.KeyMsg) tea.Cmd

	alerts      map[string][]store.Alert
	alertEntry  *alertEntry
	statusFlash string
	flashID     uint64
}

// NewModel builds the root model: panels for every watchlist symbol, the
// paged grid, sidebar and help screen. Charts start empty until the first
// history load lands.
func NewModel(deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	ui := deps.UI
	if ui == nil {
		ui = NewUIConfig(DefaultUIConfigPath(), logger)
		if err := ui.Load(); err != nil {
			logger.CaptureWarn("tui: ui config unavailable, using defaults", "error", err)
		}
	}

	m := &Model{
		cfg:       deps.Config,
		ui:        ui,
		store:     deps.Store,
		provider:  deps.History,
		ticks:     deps.Ticks,
		hasStream: deps.Ticks != nil,
		logger:    logger,
		captures:  deps.Captures,
		loading:   true,
		panels:    make(map[string]*ChartPanel),
		grid:      NewPanelGrid(ui, logger),
		sidebar:   &Sidebar{},
		help:      NewHelp(Version),
		keyMap:    buildKeyMap(ModelKeyBindings()),
		alerts:    make(map[string][]store.Alert),
	}

	m.symbols = m.resolveWatchlist()
	m.buildPanels()
	m.reloadAlerts()

	return m
}

// resolveWatchlist prefers the persisted watchlist and falls back to the
// configured symbols, seeding the store on first run.
func (m *Model) resolveWatchlist() []string {
	symbols := m.cfg.Symbols
	if m.store == nil {
		return symbols
	}

	saved, err := m.store.Watchlist()
	if err != nil {
		m.logger.CaptureError(fmt.Errorf("tui: load watchlist: %w", err))
		return symbols
	}
	if len(saved) > 0 {
		return saved
	}
	if err := m.store.ReplaceWatchlist(symbols); err != nil {
		m.logger.CaptureWarn("tui: seed watchlist failed", "error", err)
	}
	return symbols
}

func (m *Model) buildPanels() {
	style := m.ui.Renderer()

	ordered := make([]*ChartPanel, 0, len(m.symbols))
	for _, symbol := range m.symbols {
		p, err := NewChartPanel(symbol, m.engineConfig(), style, defaultStaleAfter, m.logger)
		if err != nil {
			m.logger.CaptureError(fmt.Errorf("tui: chart for %s: %w", symbol, err))
			continue
		}
		m.panels[symbol] = p
		ordered = append(ordered, p)
	}
	m.grid.SetPanels(ordered)
}

func (m *Model) engineConfig() chartengine.Config {
	return chartengine.Config{
		ZoomRange: chartengine.ZoomRange{
			Min: m.cfg.Chart.ZoomMin,
			Max: m.cfg.Chart.ZoomMax,
		},
		DefaultVisibleCount: m.cfg.Chart.VisibleCount,
		Gestures:            chartengine.GestureConfig{Tap: true, Zoom: true},
		ClearAfter:          m.cfg.Chart.ClearAfter.Std(),
		Logger:              m.logger,
	}
}

// reloadAlerts refreshes the active alert cache from the store.
func (m *Model) reloadAlerts() {
	if m.store == nil {
		return
	}
	for _, symbol := range m.symbols {
		alerts, err := m.store.ActiveAlerts(symbol)
		if err != nil {
			m.logger.CaptureError(fmt.Errorf("tui: load alerts for %s: %w", symbol, err))
			continue
		}
		m.alerts[symbol] = alerts
	}
}

// Init starts the history fetch, the tick pump, every chart's wake pump and
// the redraw clock.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadHistoryCmd(m.provider, m.symbols, m.cfg.HistoryDays),
		redrawClock(),
	}
	if m.ticks != nil {
		cmds = append(cmds, waitForTick(m.ticks))
	}
	for symbol, p := range m.panels {
		cmds = append(cmds, waitForWake(symbol, p.Chart().Wake()))
	}
	return tea.Batch(cmds...)
}

// Update dispatches messages under the state lock.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.logger.Reraise("loop", "update")

	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case historyLoadedMsg:
		return m.onHistoryLoaded(msg)

	case historyFailedMsg:
		return m.onHistoryFailed(msg)

	case TickMsg:
		return m.onTick(msg)

	case tickStreamClosedMsg:
		m.hasStream = false
		return m, m.setFlash("live stream ended")

	case engineWakeMsg:
		return m.onEngineWake(msg)

	case redrawTickMsg:
		return m.onRedrawTick()

	case clearFlashMsg:
		if msg.id == m.flashID {
			m.statusFlash = ""
		}
		return m, nil
	}

	return m, nil
}

// View renders the whole screen under the read lock.
func (m *Model) View() string {
	defer m.logger.Reraise("loop", "view")

	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	if m.width == 0 {
		return "Loading..."
	}

	bodyH := max(m.height-StatusBarHeight, 0)

	if m.help.IsActive() {
		return lipgloss.JoinVertical(lipgloss.Left, m.help.View(), m.renderStatusBar())
	}

	body := m.grid.RenderGrid()
	if m.ui.SidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.grid.Panels()), body)
	}
	body = lipgloss.Place(m.width, bodyH, lipgloss.Left, lipgloss.Top, body)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// computeLayout distributes the terminal between sidebar, grid and overlays.
func (m *Model) computeLayout() {
	bodyH := max(m.height-StatusBarHeight, 0)

	sidebarW := 0
	if m.ui.SidebarVisible() {
		sidebarW = SidebarWidthFor(m.width)
	}
	m.sidebar.SetSize(sidebarW, bodyH)
	m.grid.UpdateDimensions(max(m.width-sidebarW, 0), bodyH)
	m.help.SetSize(m.width, m.height)
}

// setFlash shows text in the status bar and arms its expiry.
func (m *Model) setFlash(text string) tea.Cmd {
	m.statusFlash = text
	m.flashID++
	return clearFlashAfter(m.flashID)
}

// Close releases every panel's engine resources.
func (m *Model) Close() {
	for _, p := range m.panels {
		p.Close()
	}
}
