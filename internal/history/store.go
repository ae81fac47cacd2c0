// Package history keeps a short, newest-first log of generated outputs per
// output container, persisted in session storage.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mithrel/marketmind/internal/kv"
	"github.com/mithrel/marketmind/pkg/api"
)

const (
	DefaultLimit     = 5
	DefaultKeyPrefix = "history_"
)

// Store owns the HistoryEntry sequences. It never deletes entries except by
// truncating to the limit on append.
type Store struct {
	kv     kv.KV
	limit  int
	prefix string
	now    func() time.Time

	mu sync.Mutex // serializes Get+Set when kv has no Update
}

type Option func(*Store)

// WithLimit overrides the per-key bound. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithKeyPrefix(p string) Option {
	return func(s *Store) { s.prefix = p }
}

func New(store kv.KV, opts ...Option) *Store {
	s := &Store{kv: store, limit: DefaultLimit, prefix: DefaultKeyPrefix, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Limit reports the configured bound.
func (s *Store) Limit() int { return s.limit }

// Key returns the storage key for id.
func (s *Store) Key(id string) string { return s.prefix + id }

// Append records content at the front of id's sequence.
func (s *Store) Append(ctx context.Context, id, content string) error {
	entry := api.NewHistoryEntry(content, s.now())
	key := s.Key(id)
	apply := func(old string, ok bool) (string, error) {
		entries := s.decode(key, old, ok)
		entries = append([]api.HistoryEntry{entry}, entries...)
		if len(entries) > s.limit {
			entries = entries[:s.limit]
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	if u, ok := s.kv.(kv.Updater); ok {
		if err := u.Update(ctx, key, apply); err != nil {
			return fmt.Errorf("history append %s: %w", id, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("history read %s: %w", id, err)
	}
	next, err := apply(old, ok)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, next); err != nil {
		return fmt.Errorf("history write %s: %w", id, err)
	}
	return nil
}

// List returns id's entries, newest first. It never returns nil.
func (s *Store) List(ctx context.Context, id string) ([]api.HistoryEntry, error) {
	key := s.Key(id)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return []api.HistoryEntry{}, fmt.Errorf("history read %s: %w", id, err)
	}
	entries := s.decode(key, raw, ok)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries, nil
}

// decode treats a missing or corrupt value as an empty sequence.
func (s *Store) decode(key, raw string, ok bool) []api.HistoryEntry {
	if !ok || raw == "" {
		return []api.HistoryEntry{}
	}
	var entries []api.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("history: discarding unreadable value key=%s err=%v", key, err)
		return []api.HistoryEntry{}
	}
	if entries == nil {
		entries = []api.HistoryEntry{}
	}
	return entries
}
