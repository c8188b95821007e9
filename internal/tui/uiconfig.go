package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quotelab/tickmark/internal/observability"
)

// RenderStyle selects how a chart panel draws its series.
type RenderStyle string

const (
	StyleLine    RenderStyle = "line"
	StyleArea    RenderStyle = "area"
	StyleBars    RenderStyle = "bars"
	StyleCandles RenderStyle = "candles"
)

// styleCycle is the order the style hotkey walks through.
var styleCycle = []RenderStyle{StyleCandles, StyleLine, StyleArea, StyleBars}

// Next returns the style after s in the cycle.
func (s RenderStyle) Next() RenderStyle {
	for i, st := range styleCycle {
		if st == s {
			return styleCycle[(i+1)%len(styleCycle)]
		}
	}
	return styleCycle[0]
}

func (s RenderStyle) valid() bool {
	for _, st := range styleCycle {
		if st == s {
			return true
		}
	}
	return false
}

// UISettings are the persisted interface preferences. They survive restarts
// so the terminal comes back the way it was left.
type UISettings struct {
	GridRows       int         `json:"grid_rows"`
	GridCols       int         `json:"grid_cols"`
	Renderer       RenderStyle `json:"renderer"`
	SidebarVisible bool        `json:"sidebar_visible"`
}

// DefaultUISettings returns the out-of-the-box preferences.
func DefaultUISettings() UISettings {
	return UISettings{
		GridRows:       2,
		GridCols:       2,
		Renderer:       StyleCandles,
		SidebarVisible: true,
	}
}

// UIConfig manages UISettings persistence. Reads take the read lock; every
// setter persists immediately so a crash never loses a preference.
type UIConfig struct {
	mu       sync.RWMutex
	path     string
	settings UISettings
	logger   *observability.CoreLogger
}

// NewUIConfig returns a manager persisting to path. Call Load before use.
func NewUIConfig(path string, logger *observability.CoreLogger) *UIConfig {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	return &UIConfig{
		path:     path,
		settings: DefaultUISettings(),
		logger:   logger,
	}
}

// DefaultUIConfigPath resolves where preferences live: an explicit
// TICKMARK_CONFIG_DIR wins, then the OS config directory, then a temp
// directory so the app still runs on locked-down hosts.
func DefaultUIConfigPath() string {
	if dir := os.Getenv("TICKMARK_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "ui.json")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tickmark", "ui.json")
	}
	return filepath.Join(os.TempDir(), "tickmark", "ui.json")
}

// Load reads settings from disk, creating the file with defaults when it
// does not exist yet.
func (c *UIConfig) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		c.settings = DefaultUISettings()
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("uiconfig: read %s: %w", c.path, err)
	}

	var s UISettings
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("uiconfig: parse %s: %w", c.path, err)
	}
	c.settings = normalizeSettings(s)
	return nil
}

// normalizeSettings clamps out-of-range values instead of failing, so a
// hand-edited file degrades gracefully.
func normalizeSettings(s UISettings) UISettings {
	if s.GridRows < 1 {
		s.GridRows = 1
	}
	if s.GridRows > 4 {
		s.GridRows = 4
	}
	if s.GridCols < 1 {
		s.GridCols = 1
	}
	if s.GridCols > 4 {
		s.GridCols = 4
	}
	if !s.Renderer.valid() {
		s.Renderer = StyleCandles
	}
	return s
}

// saveLocked writes settings atomically: marshal to a temp file in the same
// directory, then rename over the target. Caller must hold the write lock.
func (c *UIConfig) saveLocked() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("uiconfig: create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("uiconfig: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "ui-*.json")
	if err != nil {
		return fmt.Errorf("uiconfig: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("uiconfig: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("uiconfig: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("uiconfig: rename %s: %w", c.path, err)
	}
	return nil
}

// Grid returns the configured rows and columns.
func (c *UIConfig) Grid() (rows, cols int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.GridRows, c.settings.GridCols
}

// SetGrid updates the grid shape and persists.
func (c *UIConfig) SetGrid(rows, cols int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.GridRows = rows
	c.settings.GridCols = cols
	c.settings = normalizeSettings(c.settings)
	return c.saveLocked()
}

// Renderer returns the persisted chart style.
func (c *UIConfig) Renderer() RenderStyle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.Renderer
}

// SetRenderer updates the chart style and persists.
func (c *UIConfig) SetRenderer(style RenderStyle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Renderer = style
	c.settings = normalizeSettings(c.settings)
	return c.saveLocked()
}

// SidebarVisible returns whether the watchlist sidebar is shown.
func (c *UIConfig) SidebarVisible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings.SidebarVisible
}

// SetSidebarVisible updates sidebar visibility and persists.
func (c *UIConfig) SetSidebarVisible(visible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.SidebarVisible = visible
	return c.saveLocked()
}
