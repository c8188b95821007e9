package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quotelab/tickmark/internal/observability"
	"github.com/quotelab/tickmark/internal/waiting"
)

const tickBuffer = 256

// StreamConfig describes a live tick subscription.
type StreamConfig struct {
	URL     string
	Symbols []string

	// BackoffInitial and BackoffMax bound the reconnect delays. Zero
	// values get the defaults of 1s and 30s.
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Stream maintains a websocket subscription and republishes trade prints
// on a buffered channel. Run blocks until the context is cancelled,
// reconnecting with exponential backoff after connection failures.
type Stream struct {
	cfg     StreamConfig
	logger  *observability.CoreLogger
	backoff *waiting.Backoff
	ticks   chan Tick
}

// subscribeMessage is the wire format for topic subscription.
type subscribeMessage struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// tickMessage is the wire format of one trade print.
type tickMessage struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Ts     int64   `json:"ts"` // unix millis
	} `json:"data"`
}

// NewStream builds a Stream. It does not connect until Run is called.
func NewStream(cfg StreamConfig, logger *observability.CoreLogger) (*Stream, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("marketdata: stream URL is required")
	}
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("marketdata: stream needs at least one symbol")
	}
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	initial := cfg.BackoffInitial
	if initial <= 0 {
		initial = time.Second
	}
	max := cfg.BackoffMax
	if max <= 0 {
		max = 30 * time.Second
	}
	return &Stream{
		cfg:     cfg,
		logger:  logger,
		backoff: waiting.NewBackoff(initial, max),
		ticks:   make(chan Tick, tickBuffer),
	}, nil
}

// Ticks returns the channel Run publishes trade prints on. The channel is
// closed when Run returns.
func (s *Stream) Ticks() <-chan Tick {
	return s.ticks
}

// Run connects, subscribes and pumps ticks until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) error {
	defer close(s.ticks)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.connectAndPump(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		wait := s.backoff.Next()
		s.logger.CaptureWarn("marketdata: stream disconnected", "error", err, "retry_in", wait)

		ch, cancel := waiting.NewDelay(wait).Wait()
		select {
		case <-ctx.Done():
			cancel()
			return ctx.Err()
		case <-ch:
			cancel()
		}
	}
}

func (s *Stream) connectAndPump(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}

	// ReadMessage does not honor ctx on its own. Closing the connection
	// from a watcher goroutine unblocks the read loop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	sub := subscribeMessage{Op: "subscribe", Args: make([]string, 0, len(s.cfg.Symbols))}
	for _, symbol := range s.cfg.Symbols {
		sub.Args = append(sub.Args, "ticker."+symbol)
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	s.logger.Info("marketdata: stream connected", "url", s.cfg.URL, "symbols", s.cfg.Symbols)
	s.backoff.Reset()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg tickMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// control frames and acks are not tick-shaped
			continue
		}
		if msg.Data.Symbol == "" || msg.Data.Price <= 0 {
			continue
		}

		tick := Tick{
			Symbol: msg.Data.Symbol,
			Price:  msg.Data.Price,
			Time:   time.UnixMilli(msg.Data.Ts).UTC(),
		}
		select {
		case s.ticks <- tick:
		default:
			s.logger.Debug("marketdata: tick channel full, dropping", "symbol", tick.Symbol)
		}
	}
}
