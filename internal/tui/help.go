package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpEntry is one row on the help screen.
type HelpEntry struct {
	Key         string
	Description string
}

var blankLine = HelpEntry{}

// HelpModel renders the key binding reference in a scrollable viewport.
type HelpModel struct {
	viewport viewport.Model
	active   bool
	width    int
	height   int
	version  string
}

func NewHelp(version string) *HelpModel {
	return &HelpModel{
		viewport: viewport.New(80, 20),
		version:  version,
	}
}

// generateHelpContent builds the full help text.
func (h *HelpModel) generateHelpContent() string {
	header := headerStyle.Render("── tickmark: terminal market charts ──") + "\n\n"

	entries := []HelpEntry{
		{Key: "version", Description: h.version},
		blankLine,
	}
	entries = append(entries, helpEntriesFromCategories(ModelKeyBindings())...)

	var b strings.Builder
	for _, entry := range entries {
		switch {
		case entry.Key == "":
			b.WriteString("\n")
		case entry.Description == "":
			b.WriteString(helpSectionStyle.Render(entry.Key) + "\n")
		default:
			key := helpKeyStyle.Render(entry.Key)
			desc := helpDescStyle.Render(entry.Description)
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, key, desc) + "\n")
		}
	}

	return header + b.String()
}

func helpEntriesFromCategories[T any](categories []BindingCategory[T]) []HelpEntry {
	var entries []HelpEntry
	for _, category := range categories {
		entries = append(entries, HelpEntry{Key: category.Name})
		for _, binding := range category.Bindings {
			entries = append(entries, HelpEntry{
				Key:         strings.Join(binding.Keys, ", "),
				Description: binding.Description,
			})
		}
		entries = append(entries, blankLine)
	}
	return entries
}

// SetSize updates the help screen viewport.
func (h *HelpModel) SetSize(width, height int) {
	h.width = width
	h.height = height - StatusBarHeight
	h.viewport.Width = width
	h.viewport.Height = h.height

	if h.active {
		h.viewport.SetContent(h.generateHelpContent())
	}
}

// Toggle flips visibility, rebuilding content on show.
func (h *HelpModel) Toggle() {
	h.active = !h.active
	if h.active {
		h.viewport.GotoTop()
		h.viewport.SetContent(h.generateHelpContent())
	}
}

// IsActive reports whether the help screen is showing.
func (h *HelpModel) IsActive() bool { return h.active }

// Update handles messages while the help screen is up.
func (h *HelpModel) Update(msg tea.Msg) (*HelpModel, tea.Cmd) {
	if !h.active {
		return h, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "h", "?", "esc":
			h.Toggle()
			return h, nil
		case "q", "ctrl+c":
			return h, tea.Quit
		default:
			h.viewport, cmd = h.viewport.Update(msg)
		}
	case tea.MouseMsg:
		h.viewport, cmd = h.viewport.Update(msg)
	}

	return h, cmd
}

// View renders the help screen.
func (h *HelpModel) View() string {
	if !h.active {
		return ""
	}

	content := helpContentStyle.Render(h.viewport.View())

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Left,
		lipgloss.Top,
		content,
	)
}
