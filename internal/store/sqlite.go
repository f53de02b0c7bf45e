package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLite persists exchanges to a local SQLite file. Default store for
// single-machine deployments and tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, ensuring the parent
// directory exists, and bootstraps the chat_history table.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create db directory %s", dir)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "open db at %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping db at %s", path)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_history_user_ts ON chat_history(user_id, timestamp);
	`)
	return errors.Wrap(err, "init chat_history schema")
}

// Append inserts one exchange row.
func (s *SQLite) Append(ctx context.Context, userID, message, response string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (user_id, message, response, timestamp) VALUES (?, ?, ?, ?)`,
		userID, message, response, ts.UnixNano(),
	)
	if err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	return nil
}

// List returns all rows for userID, oldest first. Ties on timestamp fall
// back to insertion order.
func (s *SQLite) List(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, message, response, timestamp FROM chat_history WHERE user_id = ? ORDER BY timestamp ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var ns int64
		if err := rows.Scan(&r.UserID, &r.Message, &r.Response, &ns); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		r.Timestamp = time.Unix(0, ns)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error { return s.db.Close() }
