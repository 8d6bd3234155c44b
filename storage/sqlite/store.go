// Package sqlite provides a SQLite-backed results store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"treasurehunt/storage"
	"treasurehunt/storage/sqlite/migrations"
	"treasurehunt/storage/sqlitemigrate"

	_ "modernc.org/sqlite"
)

const MaxListLimit = 100

// Store persists hunt results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.ResultStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) RecordResult(ctx context.Context, r storage.Result) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	code := strings.TrimSpace(r.SessionCode)
	if code == "" {
		return 0, fmt.Errorf("session code is required")
	}
	if r.StartedAt.IsZero() || r.CompletedAt.IsZero() {
		return 0, fmt.Errorf("start and completion times are required")
	}
	if r.CompletedAt.Before(r.StartedAt) {
		return 0, fmt.Errorf("completion precedes start")
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO hunt_results (
		   session_code, player_name, treasures, taps,
		   started_at, completed_at, elapsed_ms
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		code,
		strings.TrimSpace(r.PlayerName),
		r.Treasures,
		r.Taps,
		toMillis(r.StartedAt),
		toMillis(r.CompletedAt),
		r.Elapsed().Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("record result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record result id: %w", err)
	}
	return id, nil
}

const resultColumns = `id, session_code, player_name, treasures, taps, started_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (storage.Result, error) {
	var r storage.Result
	var startedAt, completedAt int64
	if err := row.Scan(&r.ID, &r.SessionCode, &r.PlayerName, &r.Treasures, &r.Taps, &startedAt, &completedAt); err != nil {
		return storage.Result{}, err
	}
	r.StartedAt = fromMillis(startedAt)
	r.CompletedAt = fromMillis(completedAt)
	return r, nil
}

func (s *Store) GetResult(ctx context.Context, id int64) (storage.Result, error) {
	if err := ctx.Err(); err != nil {
		return storage.Result{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Result{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM hunt_results WHERE id = ?`, id)
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Result{}, storage.ErrNotFound
		}
		return storage.Result{}, fmt.Errorf("get result: %w", err)
	}
	return r, nil
}

// ListFastest returns completed hunts ordered by elapsed time, then id.
func (s *Store) ListFastest(ctx context.Context, limit int) ([]storage.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+resultColumns+`
		   FROM hunt_results
		  ORDER BY elapsed_ms ASC, id ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Result, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}
