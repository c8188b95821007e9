package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar composes the bottom line: a mode-dependent left section
// and a right-aligned help hint.
func (m *Model) renderStatusBar() string {
	left := m.statusLeft()
	right := labelStyle.Render("h: help")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	bar := " " + left + strings.Repeat(" ", gap) + right + " "
	return statusBarStyle.Width(m.width).Render(bar)
}

func (m *Model) statusLeft() string {
	if m.alertEntry != nil {
		return statusFlashStyle.Render(
			fmt.Sprintf("alert threshold> %s▏", m.alertEntry.buf)) +
			labelStyle.Render("  enter: set  esc: cancel")
	}

	if m.statusFlash != "" {
		return statusFlashStyle.Render(m.statusFlash)
	}

	if m.loading {
		return labelStyle.Render("loading history…")
	}
	if m.loadErr != nil {
		return statusFlashStyle.Render("history failed: " + m.loadErr.Error())
	}

	p := m.grid.FocusedPanel()
	if p == nil {
		return labelStyle.Render("no symbols configured")
	}

	if sel := p.SelectionText(); sel != "" {
		return selectionStyle.Render(p.Symbol()+" ") + neutralInk.Render(sel)
	}

	parts := []string{selectionStyle.Render(p.Symbol())}
	if p.LastPrice() > 0 {
		parts = append(parts, neutralInk.Render(formatPrice(p.LastPrice())))
	}
	if m.hasStream {
		if p.Stale() {
			parts = append(parts, staleStyle.Render("○ stale"))
		} else {
			parts = append(parts, liveStyle.Render("● live"))
		}
	}
	if summary, ok := p.Sentiment(); ok {
		parts = append(parts, tierInk(summary.Tier).Render(
			fmt.Sprintf("%s %+.0f", summary.Tier, summary.Score)))
	}
	if n := len(m.alerts[p.Symbol()]); n > 0 {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("⚑ %d", n)))
	}
	// The style cycle only shapes the price view; name the derived series
	// instead while one is charted.
	if p.ViewMode() != ViewPrice {
		parts = append(parts, mutedInk.Render(string(p.ViewMode())))
	} else {
		parts = append(parts, mutedInk.Render(string(p.Style())))
	}

	return strings.Join(parts, mutedInk.Render(" │ "))
}
