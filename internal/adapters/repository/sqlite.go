package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/workmap/internal/domain/model"
	"github.com/okian/workmap/pkg/metrics"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// SQLiteStore persists weeks in SQLite. Each item is one JSON row so the
// schema does not follow the item shape.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("migrate %s: %w", path, err), db.Close())
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`PRAGMA busy_timeout = %d;`, s.busyTimeout.Milliseconds()),
		`CREATE TABLE IF NOT EXISTS weeks (
			label TEXT PRIMARY KEY,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			week TEXT NOT NULL,
			seq INTEGER NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (week, seq)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) PutWeek(ctx context.Context, week string, items []model.SnapshotItem) (err error) {
	if err := model.ValidateWeek(week); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	payloads := make([][]byte, len(items))
	for i := range items {
		if payloads[i], err = json.Marshal(&items[i]); err != nil {
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); !errors.Is(rerr, sql.ErrTxDone) {
				err = errors.Join(err, rerr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM items WHERE week = ?`, week); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO weeks (label, updated_at) VALUES (?, ?)
		 ON CONFLICT(label) DO UPDATE SET updated_at = excluded.updated_at`,
		week, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if len(payloads) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, `INSERT INTO items (week, seq, payload) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, p := range payloads {
			if _, err = stmt.ExecContext(ctx, week, i, string(p)); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}

func (s *SQLiteStore) Week(ctx context.Context, week string) ([]model.SnapshotItem, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if ok, err := s.exists(ctx, week); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM items WHERE week = ? ORDER BY seq`, week)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SnapshotItem, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var it model.SnapshotItem
		if err := json.Unmarshal([]byte(payload), &it); err != nil {
			return nil, fmt.Errorf("decode item of %s: %w", week, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) Weeks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label FROM weeks ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *SQLiteStore) Neighbors(ctx context.Context, week string) (string, string, error) {
	if ok, err := s.exists(ctx, week); err != nil {
		return "", "", err
	} else if !ok {
		return "", "", ErrNotFound
	}

	var prev, next sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(label) FROM weeks WHERE label < ?`, week).Scan(&prev); err != nil {
		return "", "", err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(label) FROM weeks WHERE label > ?`, week).Scan(&next); err != nil {
		return "", "", err
	}
	return prev.String, next.String, nil
}

func (s *SQLiteStore) exists(ctx context.Context, week string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM weeks WHERE label = ?`, week).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
