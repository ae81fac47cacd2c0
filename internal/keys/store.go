package keys

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TokenStore holds backend API tokens by name.
type TokenStore interface {
	Get(id string) (string, error)
	Put(id, token string) error
	Delete(id string) error
}

var ErrKeyNotFound = errors.New("key not found")

// DefaultTokenID names the token used for backend calls.
const DefaultTokenID = "api"

// ConfigStore keeps tokens in config-managed storage (api.token).
type ConfigStore struct {
	Keys map[string]string
}

func (s *ConfigStore) Get(id string) (string, error) {
	if s == nil || s.Keys == nil {
		return "", ErrKeyNotFound
	}
	val, ok := s.Keys[id]
	if !ok || val == "" {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *ConfigStore) Put(id, token string) error {
	if s.Keys == nil {
		s.Keys = map[string]string{}
	}
	s.Keys[id] = token
	return nil
}

func (s *ConfigStore) Delete(id string) error {
	if s == nil || s.Keys == nil {
		return nil
	}
	delete(s.Keys, id)
	return nil
}

// Open returns the store for provider: none, config or keyring.
func Open(provider, configToken string) (TokenStore, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "none":
		return nil, nil
	case "config":
		return &ConfigStore{Keys: map[string]string{DefaultTokenID: strings.TrimSpace(configToken)}}, nil
	case "keyring":
		return &KeyringStore{}, nil
	default:
		return nil, fmt.Errorf("unknown token provider %q", provider)
	}
}

// Source adapts a TokenStore to the pipeline's token lookup. A missing
// token is not an error; the request simply goes out unauthenticated.
type Source struct {
	Store TokenStore
	ID    string
}

func (s Source) Token(ctx context.Context) (string, error) {
	if s.Store == nil {
		return "", nil
	}
	id := s.ID
	if id == "" {
		id = DefaultTokenID
	}
	tok, err := s.Store.Get(id)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return tok, err
}
