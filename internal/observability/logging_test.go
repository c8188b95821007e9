package observability_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/observability"
)

// recordingSink captures forwarded errors and messages for assertions.
type recordingSink struct {
	errs []error
	msgs []string
	tags []observability.Tags
}

func (s *recordingSink) CaptureException(err error, tags observability.Tags) {
	s.errs = append(s.errs, err)
	s.tags = append(s.tags, tags)
}

func (s *recordingSink) CaptureMessage(msg string, tags observability.Tags) {
	s.msgs = append(s.msgs, msg)
	s.tags = append(s.tags, tags)
}

// newRecordingLogger returns a logger writing JSON lines into the buffer.
func newRecordingLogger(sink observability.ErrorSink) (*observability.CoreLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := observability.NewCoreLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		&observability.CoreLoggerParams{Sink: sink},
	)
	return logger, &buf
}

func TestNewTags(t *testing.T) {
	testCases := []struct {
		name   string
		input  []any
		expect observability.Tags
	}{
		{
			name:   "from slog.Attr",
			input:  []any{slog.Attr{Key: "count", Value: slog.Int64Value(42)}},
			expect: observability.Tags{"count": "42"},
		},
		{
			name:   "from key value pair",
			input:  []any{"symbol", "BTCUSDT"},
			expect: observability.Tags{"symbol": "BTCUSDT"},
		},
		{
			name: "mixed attrs and pairs",
			input: []any{
				slog.String("source", "stream"),
				"attempt",
				3,
			},
			expect: observability.Tags{"source": "stream", "attempt": "3"},
		},
		{
			name:   "trailing key without value is dropped",
			input:  []any{slog.String("kept", "yes"), "dangling"},
			expect: observability.Tags{"kept": "yes"},
		},
		{
			name: "unsupported types are skipped",
			input: []any{
				map[string]string{"not": "supported"},
				"after",
				"ok",
			},
			expect: observability.Tags{"after": "ok"},
		},
		{
			name:   "empty input",
			input:  []any{},
			expect: observability.Tags{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, observability.NewTags(tc.input...))
		})
	}
}

func TestNewNoOpLogger(t *testing.T) {
	logger := observability.NewNoOpLogger()

	require.NotNil(t, logger)
	require.NotNil(t, logger.Logger)
	assert.Equal(t, observability.Tags{}, logger.GetTags())
}

func TestCaptureErrorForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	var buf bytes.Buffer
	logger := observability.NewCoreLogger(
		slog.New(slog.NewJSONHandler(&buf, nil)),
		&observability.CoreLoggerParams{
			Sink: sink,
			Tags: observability.Tags{"version": "test"},
		},
	)

	boom := errors.New("store: disk full")
	logger.CaptureError(boom, "symbol", "BTCUSDT")

	require.Len(t, sink.errs, 1)
	assert.Equal(t, boom, sink.errs[0])
	assert.Equal(t,
		observability.Tags{"version": "test", "symbol": "BTCUSDT"},
		sink.tags[0])
	assert.Contains(t, buf.String(), "disk full")
}

func TestCaptureWarnForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	logger, buf := newRecordingLogger(sink)

	logger.CaptureWarn("tui: ui config unavailable")

	require.Len(t, sink.msgs, 1)
	assert.Equal(t, "tui: ui config unavailable", sink.msgs[0])
	assert.Contains(t, buf.String(), "ui config unavailable")
}

func TestReraise(t *testing.T) {
	t.Run("no panic", func(t *testing.T) {
		logger, buf := newRecordingLogger(nil)

		defer func() {
			assert.Nil(t, recover())
			assert.Empty(t, buf.String())
		}()

		defer logger.Reraise()
	})

	t.Run("panic with error", func(t *testing.T) {
		logger, buf := newRecordingLogger(nil)
		boom := errors.New("tap handler exploded")

		defer func() {
			assert.Equal(t, boom, recover())
			assert.Contains(t, buf.String(), "tap handler exploded")
		}()

		defer logger.Reraise()
		panic(boom)
	})

	t.Run("panic with string rethrows original value", func(t *testing.T) {
		logger, buf := newRecordingLogger(nil)

		defer func() {
			assert.Equal(t, "not an error", recover())
			assert.Contains(t, buf.String(), "not an error")
		}()

		defer logger.Reraise()
		panic("not an error")
	})
}

func TestCaptureFatalAndPanicNil(t *testing.T) {
	logger, _ := newRecordingLogger(nil)

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorContains(t, err, "panicked with nil error")
	}()

	logger.CaptureFatalAndPanic(nil)
}
