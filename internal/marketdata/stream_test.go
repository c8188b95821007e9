package marketdata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/marketdata"
)

var upgrader = websocket.Upgrader{}

func wsAddr(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recvTick(t *testing.T, ticks <-chan marketdata.Tick) marketdata.Tick {
	t.Helper()
	select {
	case tick, ok := <-ticks:
		require.True(t, ok, "tick channel closed early")
		return tick
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tick")
		return marketdata.Tick{}
	}
}

func TestStreamSubscribesAndDeliversTicks(t *testing.T) {
	t.Parallel()

	subs := make(chan []string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub struct {
			Op   string   `json:"op"`
			Args []string `json:"args"`
		}
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		subs <- sub.Args

		// ack frame, not tick-shaped, the client must skip it
		_ = conn.WriteJSON(map[string]string{"op": "ack"})

		for i, price := range []float64{101.5, 102.25} {
			_ = conn.WriteJSON(map[string]any{
				"topic": "ticker.DEMO",
				"data": map[string]any{
					"symbol": "DEMO",
					"price":  price,
					"ts":     1700000000000 + int64(i),
				},
			})
		}

		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	stream, err := marketdata.NewStream(marketdata.StreamConfig{
		URL:     wsAddr(srv),
		Symbols: []string{"DEMO"},
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- stream.Run(ctx) }()

	select {
	case args := <-subs:
		assert.Equal(t, []string{"ticker.DEMO"}, args)
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw a subscription")
	}

	first := recvTick(t, stream.Ticks())
	assert.Equal(t, "DEMO", first.Symbol)
	assert.InDelta(t, 101.5, first.Price, 1e-9)

	second := recvTick(t, stream.Ticks())
	assert.InDelta(t, 102.25, second.Price, 1e-9)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// channel drains and closes after Run returns
	for {
		select {
		case _, ok := <-stream.Ticks():
			if !ok {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("tick channel never closed")
		}
	}
}

func TestStreamReconnectsAfterDrop(t *testing.T) {
	t.Parallel()

	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		if n == 1 {
			// first connection dies right away
			conn.Close()
			return
		}
		defer conn.Close()
		var sub map[string]any
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{
			"topic": "ticker.DEMO",
			"data":  map[string]any{"symbol": "DEMO", "price": 55.5, "ts": 1700000000000},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	stream, err := marketdata.NewStream(marketdata.StreamConfig{
		URL:            wsAddr(srv),
		Symbols:        []string{"DEMO"},
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stream.Run(ctx) }()

	tick := recvTick(t, stream.Ticks())
	assert.InDelta(t, 55.5, tick.Price, 1e-9)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
}

func TestStreamStopsRetryingWhenCancelled(t *testing.T) {
	t.Parallel()

	stream, err := marketdata.NewStream(marketdata.StreamConfig{
		URL:            "ws://127.0.0.1:1",
		Symbols:        []string{"DEMO"},
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- stream.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept retrying after cancel")
	}
}

func TestStreamConfigValidation(t *testing.T) {
	t.Parallel()

	_, err := marketdata.NewStream(marketdata.StreamConfig{Symbols: []string{"DEMO"}}, nil)
	assert.Error(t, err, "URL required")

	_, err = marketdata.NewStream(marketdata.StreamConfig{URL: "ws://x"}, nil)
	assert.Error(t, err, "symbols required")
}
