package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/quotelab/tickmark/internal/config"
	"github.com/quotelab/tickmark/internal/marketdata"
	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/store"
	"github.com/quotelab/tickmark/internal/tui"
)

func main() {
	exitCode := mainWithExitCode()
	os.Exit(exitCode)
}

func mainWithExitCode() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tickmark - terminal charts for market data\n\n")
		fmt.Fprintf(os.Stderr, "Renders candlestick charts in your terminal with zoom, tap-to-inspect\n")
		fmt.Fprintf(os.Stderr, "and price alerts persisted between sessions.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  tickmark [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TICKMARK_DEBUG        Enable debug logging (creates tickmark.debug.log)\n")
		fmt.Fprintf(os.Stderr, "  TICKMARK_DATA_DEMO    Set to false to use live exchange data\n")
		fmt.Fprintf(os.Stderr, "  TICKMARK_CONFIG_DIR   Directory for the persisted UI settings\n")
		fmt.Fprintf(os.Stderr, "  NO_COLOR              Disable colored output\n")
	}

	configPath := flag.String("config", "", "path to a YAML config file")
	demo := flag.Bool("demo", false, "force synthetic data even when live mode is configured")
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols overriding the configured watchlist")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("tickmark v" + tui.Version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *demo {
		cfg.Data.Demo = true
	}
	if *symbolsFlag != "" {
		cfg.Symbols = splitSymbols(*symbolsFlag)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Honor NO_COLOR and dumb terminals before any styles render.
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// Debug logging goes to a file; the terminal belongs to the TUI.
	var writer io.Writer = io.Discard
	if cfg.Debug {
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = "tickmark.debug.log"
		}
		loggerFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		writer = loggerFile
		defer func() {
			_ = loggerFile.Close()
		}()
	}

	// Captured errors and warnings land in the status bar, rate limited so
	// a reconnect loop cannot flood it.
	captures, err := observability.NewCaptureBuffer(64, 30*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := observability.NewCoreLogger(
		slog.New(slog.NewJSONHandler(
			writer,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		)),
		&observability.CoreLoggerParams{
			Sink: captures,
			Tags: observability.Tags{"version": tui.Version},
		},
	)

	db, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	deps := tui.Deps{
		Config:   cfg,
		Store:    db,
		Logger:   logger,
		Captures: captures,
	}

	if cfg.Data.Demo {
		deps.History = demoFeed{}
		ticks := make(chan marketdata.Tick, 16)
		deps.Ticks = ticks
		g.Go(func() error {
			runDemoTicks(gctx, ticks, cfg.Symbols, cfg.HistoryDays)
			return nil
		})
	} else {
		opts := []marketdata.HistoryOption{
			marketdata.WithCacheSize(cfg.Data.CacheSize),
			marketdata.WithRetryMax(cfg.Data.RetryMax),
		}
		if cfg.Data.BaseURL != "" {
			opts = append(opts, marketdata.WithBaseURL(cfg.Data.BaseURL))
		}
		client, err := marketdata.NewHistoryClient(logger, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		deps.History = client

		stream, err := marketdata.NewStream(marketdata.StreamConfig{
			URL:     cfg.Data.StreamURL,
			Symbols: cfg.Symbols,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		deps.Ticks = stream.Ticks()
		g.Go(func() error {
			return stream.Run(gctx)
		})
	}

	model := tui.NewModel(deps)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.CaptureError(fmt.Errorf("tickmark: %w", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.CaptureError(fmt.Errorf("tickmark: shutdown: %w", err))
	}

	return 0
}

// splitSymbols parses the -symbols flag value.
func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// demoGenerator returns the random-walk source for a symbol. Seed and base
// price both derive from the symbol name, so every run of demo mode shows
// the same charts.
func demoGenerator(symbol string) *marketdata.Synthetic {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	sum := h.Sum64()
	base := 50 + float64(sum%97)*250
	return marketdata.NewSynthetic(int64(sum), base, 0.02)
}

// demoFeed serves deterministic synthetic history in place of the HTTP
// history client.
type demoFeed struct{}

func (demoFeed) FetchAll(ctx context.Context, symbols []string, days int) (map[string][]marketdata.Candle, error) {
	out := make(map[string][]marketdata.Candle, len(symbols))
	start := time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[symbol] = demoGenerator(symbol).Candles(days, start, 24*time.Hour)
	}
	return out, nil
}

// runDemoTicks emits synthetic trade prints until ctx is cancelled. Each
// symbol gets its own generator, advanced past the history window first so
// live prices continue the same walk instead of jumping back to the base.
// Generators are never shared with demoFeed: Synthetic is not safe for
// concurrent use.
func runDemoTicks(ctx context.Context, out chan<- marketdata.Tick, symbols []string, days int) {
	defer close(out)

	start := time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	gens := make(map[string]*marketdata.Synthetic, len(symbols))
	for _, symbol := range symbols {
		g := demoGenerator(symbol)
		g.Candles(days, start, 24*time.Hour)
		gens[symbol] = g
	}

	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			symbol := symbols[i%len(symbols)]
			i++
			candle := gens[symbol].Next(now)
			select {
			case out <- marketdata.Tick{Symbol: symbol, Price: candle.Close, Time: now}:
			default:
			}
		}
	}
}
