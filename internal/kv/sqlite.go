package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite persists session values in a local database so separate CLI
// invocations of one session share history. Rows are scoped by session id.
type SQLite struct {
	db        *sql.DB
	sessionID string
	now       func() time.Time
}

// OpenSQLite opens (and migrates) the database at dsn and purges sessions
// idle for longer than ttl. A zero ttl keeps every session.
func OpenSQLite(ctx context.Context, dsn, sessionID string, ttl time.Duration) (*SQLite, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("kv: session id required")
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, errors.New("kv: empty sqlite path")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	// Immediate transactions take the write lock up front, so a second
	// writer waits on busy_timeout instead of failing its snapshot.
	dbh, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	// One writer per process; transactions reuse it through the context.
	dbh.SetMaxOpenConns(1)
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	s := &SQLite{db: dbh, sessionID: sessionID, now: time.Now}
	if ttl > 0 {
		n, err := s.purgeIdle(ctx, ttl)
		if err != nil {
			_ = dbh.Close()
			return nil, fmt.Errorf("purge idle sessions: %w", err)
		}
		if n > 0 {
			// Rows, not sessions; good enough for a diagnostic.
			logf("kv: purged idle session rows n=%d", n)
		}
	}
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS session_kv (
  session_id TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY(session_id, key)
);
CREATE INDEX IF NOT EXISTS idx_session_kv_updated ON session_kv(session_id, updated_at);
`)
	return err
}

func (s *SQLite) q(ctx context.Context) querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// SessionID reports the session this store is scoped to.
func (s *SQLite) SessionID() string { return s.sessionID }

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	row := s.q(ctx).QueryRowContext(ctx, `SELECT value FROM session_kv WHERE session_id=? AND key=?`, s.sessionID, key)
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.q(ctx).ExecContext(ctx, `
INSERT INTO session_kv(session_id, key, value, updated_at) VALUES(?, ?, ?, ?)
ON CONFLICT(session_id, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		s.sessionID, key, value, s.now().UnixMilli())
	return err
}

// Update runs fn inside an immediate transaction so concurrent appends
// from two processes of the same session do not lose entries.
func (s *SQLite) Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txCtx := WithTx(ctx, tx)
	old, ok, err := s.Get(txCtx, key)
	if err != nil {
		return err
	}
	next, err := fn(old, ok)
	if err != nil {
		return err
	}
	if err := s.Set(txCtx, key, next); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.q(ctx).ExecContext(ctx, `DELETE FROM session_kv WHERE session_id=? AND key=?`, s.sessionID, key)
	return err
}

// Clear drops every key of the current session.
func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.q(ctx).ExecContext(ctx, `DELETE FROM session_kv WHERE session_id=?`, s.sessionID)
	return err
}

func (s *SQLite) purgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := s.now().Add(-ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, `
DELETE FROM session_kv WHERE session_id IN (
  SELECT session_id FROM session_kv GROUP BY session_id HAVING MAX(updated_at) < ?
)`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
