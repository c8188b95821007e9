package observability_test

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/observability"
)

func TestCaptureBufferDrains(t *testing.T) {
	buf, err := observability.NewCaptureBuffer(8, time.Minute)
	require.NoError(t, err)

	buf.CaptureMessage("tui: history lagging", nil)
	buf.CaptureException(errors.New("store: disk full"), nil)

	assert.Equal(t,
		[]string{"tui: history lagging", "store: disk full"},
		buf.Drain())

	// A drain clears the buffer.
	assert.Empty(t, buf.Drain())
}

func TestCaptureBufferRateLimitsRepeats(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		buf, err := observability.NewCaptureBuffer(2, time.Minute)
		require.NoError(t, err)

		// Messages should be buffered initially.
		buf.CaptureMessage("message 1", nil)
		buf.CaptureMessage("message 2", nil)
		assert.Equal(t, []string{"message 1", "message 2"}, buf.Drain())

		// Let 30 seconds pass. Neither message can go through yet.
		time.Sleep(30 * time.Second)
		buf.CaptureMessage("message 1", nil)
		buf.CaptureMessage("message 2", nil)
		assert.Empty(t, buf.Drain())

		// Let 31 seconds pass. Messages can go through now.
		time.Sleep(31 * time.Second)
		buf.CaptureMessage("message 1", nil)
		buf.CaptureMessage("message 2", nil)
		assert.Equal(t, []string{"message 1", "message 2"}, buf.Drain())
	})
}

func TestCaptureBufferDistinctMessagesNotLimited(t *testing.T) {
	buf, err := observability.NewCaptureBuffer(8, time.Hour)
	require.NoError(t, err)

	buf.CaptureMessage("stream disconnected", nil)
	buf.CaptureMessage("stream reconnected", nil)
	buf.CaptureMessage("stream disconnected", nil)

	assert.Equal(t,
		[]string{"stream disconnected", "stream reconnected"},
		buf.Drain())
}
