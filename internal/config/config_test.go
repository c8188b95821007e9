package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/quotelab/tickmark/internal/config"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickmark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, config.Default().Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Symbols, cfg.Symbols)
	assert.Equal(t, 120, cfg.Chart.VisibleCount)
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	path := writeYAML(t, `
symbols: [SOLUSDT]
history_days: 90
chart:
  visible_count: 60
  zoom_min: 5
  zoom_max: 250
  clear_after: 5s
data:
  demo: true
  cache_size: 16
store:
  path: /tmp/test-tickmark.db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"SOLUSDT"}, cfg.Symbols)
	assert.Equal(t, 90, cfg.HistoryDays)
	assert.Equal(t, 60, cfg.Chart.VisibleCount)
	assert.Equal(t, 5*time.Second, cfg.Chart.ClearAfter.Std())
	assert.Equal(t, 16, cfg.Data.CacheSize)
	assert.Equal(t, "/tmp/test-tickmark.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Data.RetryMax, "unset fields keep defaults")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeYAML(t, "symbols: [unterminated")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	path := writeYAML(t, `
chart:
  zoom_max: 250
`)
	t.Setenv("TICKMARK_CHART_ZOOM_MAX", "800")
	t.Setenv("TICKMARK_SYMBOLS", "AAA,BBB")
	t.Setenv("TICKMARK_CHART_CLEAR_AFTER", "750ms")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Chart.ZoomMax)
	assert.Equal(t, []string{"AAA", "BBB"}, cfg.Symbols)
	assert.Equal(t, 750*time.Millisecond, cfg.Chart.ClearAfter.Std())
}

func TestValidateRejectsBadSettings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"no symbols", func(c *config.Config) { c.Symbols = nil }},
		{"empty symbol", func(c *config.Config) { c.Symbols = []string{"AAA", ""} }},
		{"zero history", func(c *config.Config) { c.HistoryDays = 0 }},
		{"zero visible count", func(c *config.Config) { c.Chart.VisibleCount = 0 }},
		{"zoom min below one", func(c *config.Config) { c.Chart.ZoomMin = 0 }},
		{"inverted zoom range", func(c *config.Config) { c.Chart.ZoomMin = 600; c.Chart.ZoomMax = 500 }},
		{"zero clear after", func(c *config.Config) { c.Chart.ClearAfter = 0 }},
		{"zero cache", func(c *config.Config) { c.Data.CacheSize = 0 }},
		{"live mode without stream url", func(c *config.Config) { c.Data.Demo = false; c.Data.StreamURL = "" }},
		{"empty store path", func(c *config.Config) { c.Store.Path = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	t.Parallel()

	var d config.Duration
	require.NoError(t, yaml.Unmarshal([]byte(`250ms`), &d))
	assert.Equal(t, 250*time.Millisecond, d.Std())

	assert.Error(t, yaml.Unmarshal([]byte(`fast`), &d))
}
