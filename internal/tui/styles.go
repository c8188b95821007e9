package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/quotelab/tickmark/internal/chartengine"
	"github.com/quotelab/tickmark/internal/indicator"
)

// Layout constants.
const (
	StatusBarHeight  = 1 // bottom status bar
	GridHeaderHeight = 1 // "Charts [a-b of n]" line above the grid
	ChartBorderSize  = 2 // rounded border, both sides
	ChartTitleHeight = 1 // symbol line inside each cell
	MinChartWidth    = 24
	MinChartHeight   = 6

	// PriceAxisWidth is the left gutter holding price labels and the axis rule.
	PriceAxisWidth = 9

	// Watchlist sidebar sizing relative to terminal width.
	WatchlistWidthRatio = 0.236
	WatchlistMinWidth   = 22
	WatchlistMaxWidth   = 36
)

// Palette.
var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	colorUp      = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}
	colorDown    = lipgloss.AdaptiveColor{Light: "124", Dark: "203"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "245", Dark: "240"}
	colorNeutral = lipgloss.AdaptiveColor{Light: "236", Dark: "252"}
	colorHeading = lipgloss.AdaptiveColor{Light: "61", Dark: "141"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
)

// Chart ink styles, one per engine palette slot.
var (
	accentInk  = lipgloss.NewStyle().Foreground(colorAccent)
	upInk      = lipgloss.NewStyle().Foreground(colorUp)
	downInk    = lipgloss.NewStyle().Foreground(colorDown)
	mutedInk   = lipgloss.NewStyle().Foreground(colorMuted)
	neutralInk = lipgloss.NewStyle().Foreground(colorNeutral)
)

// inkFor maps an engine palette slot to a terminal style.
func inkFor(c chartengine.Color) lipgloss.Style {
	switch c {
	case chartengine.ColorAccent:
		return accentInk
	case chartengine.ColorUp:
		return upInk
	case chartengine.ColorDown:
		return downInk
	case chartengine.ColorMuted:
		return mutedInk
	default:
		return neutralInk
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorHeading).
			Bold(true)

	navInfoStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorNeutral).
			Bold(true)

	axisStyle = lipgloss.NewStyle().
			Foreground(colorBorder)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	selectionStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "252"}).
			Background(lipgloss.AdaptiveColor{Light: "253", Dark: "236"})

	statusFlashStyle = lipgloss.NewStyle().
				Foreground(colorWarn).
				Bold(true)

	liveStyle  = lipgloss.NewStyle().Foreground(colorUp)
	staleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	helpSectionStyle = lipgloss.NewStyle().
				Foreground(colorHeading).
				Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Width(18)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorNeutral)

	helpContentStyle = lipgloss.NewStyle().
				Padding(1, 2)

	sidebarTitleStyle = lipgloss.NewStyle().
				Foreground(colorHeading).
				Bold(true).
				Padding(0, 1)

	sidebarRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	sidebarFocusedRowStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(colorAccent).
				Bold(true)
)

// sidebarBorder draws only the edge facing the chart grid.
var sidebarBorder = lipgloss.Border{
	Right: "│",
}

var sidebarStyle = lipgloss.NewStyle().
	Border(sidebarBorder, false, true, false, false).
	BorderForeground(colorBorder)

// tierGlyphs give the watchlist a one-rune sentiment readout.
var tierGlyphs = map[indicator.Tier]string{
	indicator.TierBearish:     "▼",
	indicator.TierLeanBearish: "▽",
	indicator.TierNeutral:     "·",
	indicator.TierLeanBullish: "△",
	indicator.TierBullish:     "▲",
}

// tierInk colors a sentiment tier like the chart palette.
func tierInk(t indicator.Tier) lipgloss.Style {
	switch t {
	case indicator.TierBullish, indicator.TierLeanBullish:
		return upInk
	case indicator.TierBearish, indicator.TierLeanBearish:
		return downInk
	default:
		return mutedInk
	}
}

// TruncateTitle shortens s to fit width columns, accounting for wide runes.
func TruncateTitle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
