package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding binds keys to a handler on the target type.
//
// A nil Handler makes the binding documentation-only: it shows up on the help
// screen but is dispatched elsewhere (a child component or an input mode).
type KeyBinding[T any] struct {
	Keys        []string
	Description string
	Handler     func(*T, tea.KeyMsg) tea.Cmd
}

// BindingCategory groups related key bindings for help display.
type BindingCategory[T any] struct {
	Name     string
	Bindings []KeyBinding[T]
}

// ModelKeyBindings returns the full key set of the chart screen.
func ModelKeyBindings() []BindingCategory[Model] {
	return []BindingCategory[Model]{
		{
			Name: "General",
			Bindings: []KeyBinding[Model]{
				{
					Keys:        []string{"h", "?"},
					Description: "Toggle this help screen",
				},
				{
					Keys:        []string{"q", "ctrl+c"},
					Description: "Quit",
					Handler:     (*Model).handleQuit,
				},
				{
					Keys:        []string{"g"},
					Description: "Refresh history for all symbols",
					Handler:     (*Model).handleRefresh,
				},
			},
		},
		{
			Name: "Panels",
			Bindings: []KeyBinding[Model]{
				{
					Keys:        []string{"s"},
					Description: "Toggle watchlist sidebar",
					Handler:     (*Model).handleToggleSidebar,
				},
				{
					Keys:        []string{"tab"},
					Description: "Focus next chart",
					Handler:     (*Model).handleFocusNext,
				},
				{
					Keys:        []string{"shift+tab"},
					Description: "Focus previous chart",
					Handler:     (*Model).handleFocusPrev,
				},
				{
					Keys:        []string{"N", "pgup"},
					Description: "Previous chart page",
					Handler:     (*Model).handlePrevPage,
				},
				{
					Keys:        []string{"n", "pgdown"},
					Description: "Next chart page",
					Handler:     (*Model).handleNextPage,
				},
			},
		},
		{
			Name: "Charts",
			Bindings: []KeyBinding[Model]{
				{
					Keys:        []string{"+", "="},
					Description: "Zoom in on focused chart",
					Handler:     (*Model).handleZoomIn,
				},
				{
					Keys:        []string{"-", "_"},
					Description: "Zoom out on focused chart",
					Handler:     (*Model).handleZoomOut,
				},
				{
					Keys:        []string{"0"},
					Description: "Reset view on focused chart",
					Handler:     (*Model).handleResetView,
				},
				{
					Keys:        []string{"r"},
					Description: "Cycle chart style (candles/line/area/bars)",
					Handler:     (*Model).handleCycleStyle,
				},
				{
					Keys:        []string{"i"},
					Description: "Cycle indicator view (price/volume/rsi/atr/sentiment)",
					Handler:     (*Model).handleCycleView,
				},
			},
		},
		{
			Name: "Alerts",
			Bindings: []KeyBinding[Model]{
				{
					Keys:        []string{"a"},
					Description: "Set a price alert on the focused symbol",
					Handler:     (*Model).handleEnterAlertEntry,
				},
				{
					Keys:        []string{"x"},
					Description: "Clear alerts on the focused symbol",
					Handler:     (*Model).handleClearAlerts,
				},
				{
					Keys:        []string{"esc"},
					Description: "Cancel alert entry",
				},
			},
		},

		mouseCategory[Model](),
	}
}

// buildKeyMap builds a fast lookup map from key string to handler.
func buildKeyMap[T any](categories []BindingCategory[T]) map[string]func(*T, tea.KeyMsg) tea.Cmd {
	keyMap := make(map[string]func(*T, tea.KeyMsg) tea.Cmd)
	for _, category := range categories {
		for _, binding := range category.Bindings {
			if binding.Handler == nil {
				continue
			}
			for _, key := range binding.Keys {
				keyMap[normalizeKey(key)] = binding.Handler
			}
		}
	}
	return keyMap
}

// normalizeKey normalizes Bubble Tea's KeyMsg.String() into a stable key.
//
// Bubble Tea has historically reported space as " " in some situations; we
// want a help-friendly, explicit key name.
func normalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

func mouseCategory[T any]() BindingCategory[T] {
	return BindingCategory[T]{
		Name: "Mouse",
		Bindings: []KeyBinding[T]{
			{
				Keys:        []string{"click"},
				Description: "Select the nearest point (crosshair)",
			},
			{
				Keys:        []string{"wheel"},
				Description: "Zoom in/out on the chart under the cursor",
			},
			{
				Keys:        []string{"shift+drag"},
				Description: "Select text",
			},
		},
	}
}
