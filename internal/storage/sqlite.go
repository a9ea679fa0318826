// Package storage provides persistence backends for the leaderboard and the
// run history. The SQLite store uses the pure-Go modernc.org/sqlite driver
// to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database holding leaderboard values and runs.
type Store struct {
	db *sql.DB
}

// RunEntry is a single recorded game.
type RunEntry struct {
	ID        int64
	Outcome   string
	ElapsedMs int64
	Rows      int
	Cols      int
	Player    string
	CreatedAt time.Time
}

// Elapsed returns the run time as a duration.
func (e RunEntry) Elapsed() time.Duration {
	return time.Duration(e.ElapsedMs) * time.Millisecond
}

// RunStats contains aggregated statistics over all recorded runs.
type RunStats struct {
	Games      int
	Wins       int
	Losses     int
	BestMs     int64 // fastest win, 0 if none
	AvgWinMs   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time; concurrent transactions queue on the pool
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			outcome TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			grid_rows INTEGER NOT NULL,
			grid_cols INTEGER NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome, elapsed_ms);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements leaderboard.Store.
func (s *Store) Load(ctx context.Context, key string) ([]float64, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}

	times, err := decodeTimes(raw)
	if err != nil {
		return nil, false, err
	}
	return times, true, nil
}

// Save implements leaderboard.Store.
func (s *Store) Save(ctx context.Context, key string, times []float64) error {
	raw, err := encodeTimes(times)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// Update implements leaderboard.Updater. The read-modify-write runs in a
// single transaction. A corrupt stored value is treated as empty.
func (s *Store) Update(ctx context.Context, key string, fn func([]float64) []float64) ([]float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current []float64
	var raw string
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("storage: cannot read %q: %w", key, err)
	default:
		current, _ = decodeTimes(raw)
	}

	next := fn(current)
	encoded, err := encodeTimes(next)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, encoded,
	); err != nil {
		return nil, fmt.Errorf("storage: cannot write %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage: cannot commit: %w", err)
	}
	return next, nil
}

// Delete removes the value stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %q: %w", key, err)
	}
	return nil
}

// RecordRun implements session.RunSink.
func (s *Store) RecordRun(ctx context.Context, run session.Run) error {
	_, err := s.SaveRun(ctx, run)
	return err
}

// SaveRun records a finished game. Returns the ID of the inserted record.
func (s *Store) SaveRun(ctx context.Context, run session.Run) (int64, error) {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (outcome, elapsed_ms, grid_rows, grid_cols, player, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Outcome.String(),
		run.Elapsed.Milliseconds(),
		run.Rows,
		run.Cols,
		run.Player,
		finished.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, outcome, elapsed_ms, grid_rows, grid_cols, player, created_at
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Outcome, &e.ElapsedMs, &e.Rows, &e.Cols, &e.Player, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats retrieves aggregated statistics over all runs.
func (s *Store) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	var best sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'lost' THEN 1 ELSE 0 END), 0),
		        MIN(CASE WHEN outcome = 'won' THEN elapsed_ms END),
		        AVG(CASE WHEN outcome = 'won' THEN elapsed_ms END)
		 FROM runs`,
	).Scan(&stats.Games, &stats.Wins, &stats.Losses, &best, &avg)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}
	if best.Valid {
		stats.BestMs = best.Int64
	}
	if avg.Valid {
		stats.AvgWinMs = avg.Float64
	}

	var lastPlayed any
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetime values from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, strings.TrimSuffix(t, "Z")); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func encodeTimes(times []float64) (string, error) {
	if times == nil {
		times = []float64{}
	}
	raw, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("storage: cannot encode times: %w", err)
	}
	return string(raw), nil
}

func decodeTimes(raw string) ([]float64, error) {
	var times []float64
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, fmt.Errorf("storage: corrupt value: %w", err)
	}
	return times, nil
}

var (
	_ leaderboard.Store   = (*Store)(nil)
	_ leaderboard.Updater = (*Store)(nil)
	_ session.RunSink     = (*Store)(nil)
)
