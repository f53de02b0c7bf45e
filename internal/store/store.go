package store

import (
	"context"
	"fmt"
	"time"
)

// Record is one persisted exchange row: user_id, message, response,
// timestamp. Rows are append-only; nothing updates or deletes them.
type Record struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a durable append-only log of exchanges keyed by an opaque,
// caller-supplied user identifier. It is optional at runtime: callers must
// keep working with no store configured.
type Store interface {
	// Append writes one exchange. Fails with *PersistenceError on
	// connect/write failure.
	Append(ctx context.Context, userID, message, response string, ts time.Time) error
	// List returns all records for userID ordered by timestamp ascending.
	// A user with no rows yields an empty slice, not an error.
	List(ctx context.Context, userID string) ([]Record, error)
	Close() error
}

// PersistenceError wraps a store connect/read/write failure. Callers treat
// persistence as best-effort and must not surface this to the end user.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Nop is the no-store configuration: appends vanish, lists are empty.
type Nop struct{}

func (Nop) Append(context.Context, string, string, string, time.Time) error { return nil }

func (Nop) List(context.Context, string) ([]Record, error) { return []Record{}, nil }

func (Nop) Close() error { return nil }
