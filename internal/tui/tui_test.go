package tui_test

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/quotelab/tickmark/internal/config"
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/store"
	"github.com/quotelab/tickmark/internal/tui"
)

// containsTTY is tolerant of ANSI/OSC/cursor codes and box-drawing glyphs.
// It normalizes both the output stream and the wanted string and performs a
// substring check.
func containsTTY(b []byte, want string) bool {
	normalize := func(s string) string {
		csi := regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
		osc := regexp.MustCompile(`\x1b\].*?\x07`)
		esc := regexp.MustCompile(`\x1b.`)
		s = csi.ReplaceAllString(s, "")
		s = osc.ReplaceAllString(s, "")
		s = esc.ReplaceAllString(s, "")

		replacer := strings.NewReplacer(
			"│", "", "─", "", "╭", "", "╮", "", "╰", "", "╯", "",
			"┌", "", "┐", "", "└", "", "┘", "", "┤", "",
		)
		s = replacer.Replace(s)

		ws := regexp.MustCompile(`\s+`)
		s = ws.ReplaceAllString(s, "")

		return strings.ToLower(s)
	}
	out := normalize(string(b))
	needle := normalize(want)
	return strings.Contains(out, needle)
}

func waitForText(t *testing.T, tm *teatest.TestModel, want string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(),
		func(bts []byte) bool { return containsTTY(bts, want) },
		teatest.WithCheckInterval(50*time.Millisecond),
		teatest.WithDuration(10*time.Second),
	)
}

func TestTUI_EndToEnd_Teatest(t *testing.T) {
	cfg := config.Default()
	cfg.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	cfg.Store.Path = filepath.Join(t.TempDir(), "tickmark.db")

	st, err := store.Open(cfg.Store.Path, observability.NewNoOpLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ui := tui.NewUIConfig(filepath.Join(t.TempDir(), "ui.json"), observability.NewNoOpLogger())
	if err := ui.Load(); err != nil {
		t.Fatalf("load ui config: %v", err)
	}

	ticks := make(chan marketdata.Tick, 4)

	m := tui.NewModel(tui.Deps{
		Config:  cfg,
		UI:      ui,
		Store:   st,
		History: stubHistory{data: testHistory("BTCUSDT", "ETHUSDT")},
		Ticks:   ticks,
		Logger:  observability.NewNoOpLogger(),
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(130, 40))
	tm.Send(tea.WindowSizeMsg{Width: 130, Height: 40})

	// History arrives through Init's command; both symbols show up.
	waitForText(t, tm, "Watchlist")
	waitForText(t, tm, "BTCUSDT")
	waitForText(t, tm, "ETHUSDT")

	// A live tick updates the focused symbol's quote.
	ticks <- marketdata.Tick{Symbol: "BTCUSDT", Price: 45678, Time: time.Now()}
	waitForText(t, tm, "45678")

	// Closing the stream surfaces in the status bar.
	close(ticks)
	waitForText(t, tm, "live stream ended")

	// Help overlay toggles on and quits the program.
	tm.Type("h")
	waitForText(t, tm, "Toggle this help screen")

	tm.Type("q")
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
}

func TestTUI_HistoryFailure_Teatest(t *testing.T) {
	cfg := config.Default()
	cfg.Symbols = []string{"BTCUSDT"}
	cfg.Store.Path = filepath.Join(t.TempDir(), "tickmark.db")

	st, err := store.Open(cfg.Store.Path, observability.NewNoOpLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ui := tui.NewUIConfig(filepath.Join(t.TempDir(), "ui.json"), observability.NewNoOpLogger())
	if err := ui.Load(); err != nil {
		t.Fatalf("load ui config: %v", err)
	}

	m := tui.NewModel(tui.Deps{
		Config:  cfg,
		UI:      ui,
		Store:   st,
		History: stubHistory{err: context.DeadlineExceeded},
		Logger:  observability.NewNoOpLogger(),
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	tm.Send(tea.WindowSizeMsg{Width: 100, Height: 30})

	waitForText(t, tm, "history failed")

	tm.Type("q")
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
}
