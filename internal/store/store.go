// Package store persists alerts and the symbol watchlist in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/quotelab/tickmark/internal/observability"
)

// Direction says which way price must cross an alert threshold.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Alert is a price threshold watched for one symbol.
type Alert struct {
	ID          uuid.UUID
	Symbol      string
	Threshold   float64
	Direction   Direction
	CreatedAt   time.Time
	TriggeredAt *time.Time
}

// Crossed reports whether price satisfies the alert condition.
func (a Alert) Crossed(price float64) bool {
	switch a.Direction {
	case DirectionAbove:
		return price >= a.Threshold
	case DirectionBelow:
		return price <= a.Threshold
	default:
		return false
	}
}

// Store wraps the SQLite database. Writes are serialized with a mutex;
// WAL mode keeps reads cheap.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *observability.CoreLogger
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string, logger *observability.CoreLogger) (*Store, error) {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	logger.Info("store: opened", "path", path)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			threshold    REAL NOT NULL,
			direction    TEXT NOT NULL,
			created_at   INTEGER NOT NULL,
			triggered_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,

		`CREATE TABLE IF NOT EXISTS watchlist (
			position INTEGER PRIMARY KEY,
			symbol   TEXT NOT NULL UNIQUE
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// AddAlert stores a new active alert and returns it.
func (s *Store) AddAlert(symbol string, threshold float64, dir Direction) (Alert, error) {
	if symbol == "" {
		return Alert{}, fmt.Errorf("store: alert symbol is required")
	}
	if dir != DirectionAbove && dir != DirectionBelow {
		return Alert{}, fmt.Errorf("store: bad alert direction %q", dir)
	}

	alert := Alert{
		ID:        uuid.New(),
		Symbol:    symbol,
		Threshold: threshold,
		Direction: dir,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO alerts (id, symbol, threshold, direction, created_at)
		VALUES (?,?,?,?,?)`,
		alert.ID.String(), alert.Symbol, alert.Threshold, string(alert.Direction),
		alert.CreatedAt.Unix(),
	)
	if err != nil {
		return Alert{}, fmt.Errorf("store: insert alert: %w", err)
	}
	return alert, nil
}

// ActiveAlerts returns untriggered alerts, oldest first. An empty symbol
// matches every symbol.
func (s *Store) ActiveAlerts(symbol string) ([]Alert, error) {
	query := `SELECT id, symbol, threshold, direction, created_at
		FROM alerts WHERE triggered_at IS NULL`
	args := []any{}
	if symbol != "" {
		query += ` AND symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var (
			id        string
			a         Alert
			dir       string
			createdAt int64
		)
		if err := rows.Scan(&id, &a.Symbol, &a.Threshold, &dir, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan alert: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("store: bad alert id %q: %w", id, err)
		}
		a.ID = parsed
		a.Direction = Direction(dir)
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkTriggered stamps an alert as fired. Triggering twice is an error.
func (s *Store) MarkTriggered(id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE alerts SET triggered_at = ?
		WHERE id = ? AND triggered_at IS NULL`,
		at.UTC().Unix(), id.String())
	if err != nil {
		return fmt.Errorf("store: mark triggered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: mark triggered: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store: alert %s not active", id)
	}
	return nil
}

// DeleteAlert removes an alert regardless of state.
func (s *Store) DeleteAlert(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM alerts WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("store: delete alert: %w", err)
	}
	return nil
}

// ReplaceWatchlist swaps the stored watchlist for symbols, keeping order.
func (s *Store) ReplaceWatchlist(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("store: clear watchlist: %w", err)
	}
	for i, symbol := range symbols {
		if symbol == "" {
			return fmt.Errorf("store: empty symbol at position %d", i)
		}
		if _, err := tx.Exec(`INSERT INTO watchlist (position, symbol) VALUES (?,?)`, i, symbol); err != nil {
			return fmt.Errorf("store: insert %q: %w", symbol, err)
		}
	}
	return tx.Commit()
}

// Watchlist returns the stored symbols in order.
func (s *Store) Watchlist() ([]string, error) {
	rows, err := s.db.Query(`SELECT symbol FROM watchlist ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("store: query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("store: scan watchlist: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	s.logger.Info("store: closing")
	return s.db.Close()
}
