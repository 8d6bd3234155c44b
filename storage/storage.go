// Package storage defines persistence contracts for completed hunts.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested result is missing.
var ErrNotFound = errors.New("record not found")

// Result is one finished treasure hunt.
type Result struct {
	ID          int64
	SessionCode string
	PlayerName  string
	Treasures   int
	Taps        int
	StartedAt   time.Time
	CompletedAt time.Time
}

func (r Result) Elapsed() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// ResultStore persists completed hunts.
type ResultStore interface {
	RecordResult(ctx context.Context, r Result) (int64, error)
	GetResult(ctx context.Context, id int64) (Result, error)
	ListFastest(ctx context.Context, limit int) ([]Result, error)
}
