package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// KV is the session-scoped key/value capability the history store and the
// session record are persisted in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Updater is implemented by stores that can run a read-modify-write
// atomically for one key.
type Updater interface {
	Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error
}

// Clearer ends a session by dropping every key it holds.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Deleter removes a single key.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

var ErrClosed = errors.New("kv: store closed")

// Options selects and configures a backend.
type Options struct {
	Backend   string // "sqlite" or "memory"
	DSN       string // sqlite://path
	SessionID string
	TTL       time.Duration
}

// Store is an opened backend plus its closer.
type Store interface {
	KV
	Updater
	Clearer
	Deleter
	io.Closer
}

// Open returns a Store for the requested backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "memory", "mem":
		return NewMem(), nil
	case "sqlite":
		return OpenSQLite(ctx, opts.DSN, opts.SessionID, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Backend)
	}
}
