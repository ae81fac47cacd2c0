package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, dir, session string, ttl time.Duration) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), "sqlite://"+filepath.Join(dir, "session.db"), session, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMem(),
		"sqlite": openTestSQLite(t, t.TempDir(), "s1", 0),
	}
}

func TestStoreContract(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := st.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Set(ctx, "history_mkt-output", `[]`))
			require.NoError(t, st.Set(ctx, "history_mkt-output", `["x"]`))
			v, ok, err := st.Get(ctx, "history_mkt-output")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `["x"]`, v)

			require.NoError(t, st.Update(ctx, "counter", func(old string, ok bool) (string, error) {
				assert.False(t, ok)
				return old + "a", nil
			}))
			require.NoError(t, st.Update(ctx, "counter", func(old string, ok bool) (string, error) {
				assert.True(t, ok)
				return old + "b", nil
			}))
			v, _, err = st.Get(ctx, "counter")
			require.NoError(t, err)
			assert.Equal(t, "ab", v)

			require.NoError(t, st.Delete(ctx, "counter"))
			_, ok, err = st.Get(ctx, "counter")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, st.Clear(ctx))
			_, ok, err = st.Get(ctx, "history_mkt-output")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestUpdateErrorLeavesValue(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Set(ctx, "k", "v1"))
			err := st.Update(ctx, "k", func(string, bool) (string, error) {
				return "", fmt.Errorf("boom")
			})
			require.Error(t, err)
			v, _, err := st.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v1", v)
		})
	}
}

func TestConcurrentUpdates(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = st.Update(ctx, "n", func(old string, _ bool) (string, error) {
						return old + ".", nil
					})
				}()
			}
			wg.Wait()
			v, _, err := st.Get(ctx, "n")
			require.NoError(t, err)
			assert.Len(t, v, 20)
		})
	}
}

func TestSQLiteSessionsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	a := openTestSQLite(t, dir, "a", 0)
	b := openTestSQLite(t, dir, "b", 0)

	require.NoError(t, a.Set(ctx, "k", "from-a"))
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Clear(ctx))
	v, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a", v)
}

func TestSQLitePurgesIdleSessions(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	old := openTestSQLite(t, dir, "old", 0)
	old.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	require.NoError(t, old.Set(ctx, "k", "stale"))
	require.NoError(t, old.Close())

	fresh := openTestSQLite(t, dir, "fresh", 0)
	require.NoError(t, fresh.Set(ctx, "k", "live"))
	require.NoError(t, fresh.Close())

	reopened := openTestSQLite(t, dir, "old", 12*time.Hour)
	_, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "idle session should have been purged")

	other := openTestSQLite(t, dir, "fresh", 0)
	v, ok, err := other.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "live", v)
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	_, isMem := st.(*Mem)
	assert.True(t, isMem)

	st, err = Open(ctx, Options{Backend: "sqlite", DSN: "sqlite://" + filepath.Join(t.TempDir(), "x.db"), SessionID: "s"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, isSQLite := st.(*SQLite)
	assert.True(t, isSQLite)

	_, err = Open(ctx, Options{Backend: "redis"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "sqlite", DSN: "sqlite://" + filepath.Join(t.TempDir(), "y.db")})
	assert.Error(t, err, "session id is required")
}

func TestMemClosed(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Close())
	_, _, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLiteUpdatesAcrossHandles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	// Two handles on one file stand in for two processes of one session.
	handles := []*SQLite{openTestSQLite(t, dir, "shared", 0), openTestSQLite(t, dir, "shared", 0)}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for _, h := range handles {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(h *SQLite) {
				defer wg.Done()
				errs <- h.Update(ctx, "n", func(old string, _ bool) (string, error) {
					return old + ".", nil
				})
			}(h)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	v, _, err := handles[1].Get(ctx, "n")
	require.NoError(t, err)
	assert.Len(t, v, 40)
}
