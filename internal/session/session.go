// Package session tracks who is using the client and which session the
// stored history belongs to.
package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zeebo/blake3"

	"github.com/mithrel/marketmind/internal/kv"
	"github.com/mithrel/marketmind/pkg/api"
)

// UserKey is where the signed-in user record lives.
const UserKey = "marketmind_user"

var ErrNotLoggedIn = errors.New("not logged in")

// User is the presence record. There is no credential check.
type User struct {
	Name string `json:"name"`
}

// DisplayName capitalizes the first letter of the name.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// Initial is the avatar letter.
func (u User) Initial() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// Manager reads and writes the user record in session storage.
type Manager struct {
	kv kv.KV
}

func New(store kv.KV) *Manager { return &Manager{kv: store} }

func (m *Manager) Login(ctx context.Context, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, errors.New("name must not be empty")
	}
	u := User{Name: name}
	b, err := json.Marshal(u)
	if err != nil {
		return User{}, err
	}
	if err := m.kv.Set(ctx, UserKey, string(b)); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if d, ok := m.kv.(kv.Deleter); ok {
		return d.Delete(ctx, UserKey)
	}
	return m.kv.Set(ctx, UserKey, "")
}

// Current returns the signed-in user or ErrNotLoggedIn.
func (m *Manager) Current(ctx context.Context) (User, error) {
	raw, ok, err := m.kv.Get(ctx, UserKey)
	if err != nil {
		return User{}, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return User{}, ErrNotLoggedIn
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || strings.TrimSpace(u.Name) == "" {
		return User{}, ErrNotLoggedIn
	}
	return u, nil
}

// End drops everything the session stored.
func (m *Manager) End(ctx context.Context) error {
	c, ok := m.kv.(kv.Clearer)
	if !ok {
		return errors.New("session store cannot be cleared")
	}
	return c.Clear(ctx)
}

// DeriveID returns a stable id for the calling terminal: the parent shell's
// pid, the host and the data dir. Each terminal gets its own session, much
// like a browser tab.
func DeriveID(dataDir string) string {
	host, _ := os.Hostname()
	h := blake3.New()
	for _, part := range []string{host, strconv.Itoa(os.Getppid()), os.Getenv("TERM_SESSION_ID"), dataDir} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// ResolveID prefers a configured id, then a derived one, then a random one.
func ResolveID(configured, dataDir string) string {
	if id := strings.TrimSpace(configured); id != "" {
		return id
	}
	if id := DeriveID(dataDir); id != "" {
		return id
	}
	return api.NewID()
}
