package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/tickmark/internal/store"
)

func openStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickmark.db")
	s, err := store.Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestAddAlertRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	added, err := s.AddAlert("BTCUSDT", 50000, store.DirectionAbove)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)

	alerts, err := s.ActiveAlerts("BTCUSDT")
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	got := alerts[0]
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, 50000.0, got.Threshold)
	assert.Equal(t, store.DirectionAbove, got.Direction)
	assert.Nil(t, got.TriggeredAt)
}

func TestAddAlertValidation(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	_, err := s.AddAlert("", 100, store.DirectionAbove)
	assert.Error(t, err)

	_, err = s.AddAlert("ETHUSDT", 100, store.Direction("sideways"))
	assert.Error(t, err)
}

func TestActiveAlertsFiltersBySymbol(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	_, err := s.AddAlert("AAA", 10, store.DirectionAbove)
	require.NoError(t, err)
	_, err = s.AddAlert("BBB", 20, store.DirectionBelow)
	require.NoError(t, err)

	all, err := s.ActiveAlerts("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := s.ActiveAlerts("AAA")
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "AAA", onlyA[0].Symbol)
}

func TestMarkTriggeredRemovesFromActive(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	added, err := s.AddAlert("AAA", 10, store.DirectionAbove)
	require.NoError(t, err)

	require.NoError(t, s.MarkTriggered(added.ID, time.Now()))

	alerts, err := s.ActiveAlerts("AAA")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	assert.Error(t, s.MarkTriggered(added.ID, time.Now()), "second trigger is an error")
}

func TestDeleteAlert(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	added, err := s.AddAlert("AAA", 10, store.DirectionBelow)
	require.NoError(t, err)
	require.NoError(t, s.DeleteAlert(added.ID))

	alerts, err := s.ActiveAlerts("")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertCrossed(t *testing.T) {
	t.Parallel()

	above := store.Alert{Threshold: 100, Direction: store.DirectionAbove}
	assert.True(t, above.Crossed(100))
	assert.True(t, above.Crossed(101))
	assert.False(t, above.Crossed(99.99))

	below := store.Alert{Threshold: 100, Direction: store.DirectionBelow}
	assert.True(t, below.Crossed(100))
	assert.True(t, below.Crossed(42))
	assert.False(t, below.Crossed(100.01))
}

func TestWatchlistReplaceKeepsOrder(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	require.NoError(t, s.ReplaceWatchlist([]string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}))

	got, err := s.Watchlist()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, got)

	require.NoError(t, s.ReplaceWatchlist([]string{"ETHUSDT"}))
	got, err = s.Watchlist()
	require.NoError(t, err)
	assert.Equal(t, []string{"ETHUSDT"}, got)
}

func TestWatchlistRejectsEmptySymbol(t *testing.T) {
	t.Parallel()
	s, _ := openStore(t)

	err := s.ReplaceWatchlist([]string{"AAA", ""})
	require.Error(t, err)

	got, err := s.Watchlist()
	require.NoError(t, err)
	assert.Empty(t, got, "failed replace leaves nothing behind")
}

func TestStateSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tickmark.db")
	s, err := store.Open(path, nil)
	require.NoError(t, err)

	added, err := s.AddAlert("AAA", 10, store.DirectionAbove)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceWatchlist([]string{"AAA", "BBB"}))
	require.NoError(t, s.Close())

	reopened, err := store.Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	alerts, err := reopened.ActiveAlerts("")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, added.ID, alerts[0].ID)

	symbols, err := reopened.Watchlist()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, symbols)
}
