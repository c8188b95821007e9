package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sidebar renders the watchlist: one row per symbol with the latest price
// and sentiment glyph. Rows mirror the panel grid's ordering, so row index
// maps straight back to a panel.
type Sidebar struct {
	width  int
	height int
}

// SetSize updates the sidebar viewport.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the current sidebar width including its border column.
func (s *Sidebar) Width() int { return s.width }

// SidebarWidthFor derives the sidebar width from the terminal width.
func SidebarWidthFor(terminalWidth int) int {
	w := int(float64(terminalWidth) * WatchlistWidthRatio)
	if w < WatchlistMinWidth {
		w = WatchlistMinWidth
	}
	if w > WatchlistMaxWidth {
		w = WatchlistMaxWidth
	}
	return w
}

// RowAt translates a screen row inside the sidebar to a panel index, or -1
// when the row is the title line or past the list.
func (s *Sidebar) RowAt(y, panelCount int) int {
	idx := y - 2 // title line plus its underline
	if idx < 0 || idx >= panelCount {
		return -1
	}
	return idx
}

// View renders the watchlist rows for the given panels.
func (s *Sidebar) View(panels []*ChartPanel) string {
	innerW := s.width - 1 // border column

	title := sidebarTitleStyle.Render(TruncateTitle("Watchlist", innerW-2))
	underline := axisStyle.Render(strings.Repeat("─", max(innerW, 0)))

	rows := []string{title, underline}
	for _, p := range panels {
		rows = append(rows, s.renderRow(p, innerW))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	framed := sidebarStyle.Height(s.height).Render(
		lipgloss.Place(innerW, s.height, lipgloss.Left, lipgloss.Top, content),
	)
	return framed
}

func (s *Sidebar) renderRow(p *ChartPanel, innerW int) string {
	glyph := " "
	glyphInk := mutedInk
	if summary, ok := p.Sentiment(); ok {
		if g, found := tierGlyphs[summary.Tier]; found {
			glyph = g
		}
		glyphInk = tierInk(summary.Tier)
	}

	price := "—"
	if p.LastPrice() > 0 {
		price = formatPrice(p.LastPrice())
	}

	// Symbol left, price right, glyph at the edge.
	style := sidebarRowStyle
	if p.Focused() {
		style = sidebarFocusedRowStyle
	}

	bodyW := innerW - 2 - 2 // row padding and glyph column
	symbolW := max(bodyW-len(price)-1, 4)
	body := fmt.Sprintf("%-*s %s", symbolW, TruncateTitle(p.Symbol(), symbolW), price)

	return style.Render(TruncateTitle(body, bodyW)) + glyphInk.Render(glyph)
}
