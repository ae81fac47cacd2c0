package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "marketmind"

// KeyringStore keeps tokens in the system keyring.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(id string) (string, error) {
	val, err := keyring.Get(s.service(), id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(id, token string) error {
	return keyring.Set(s.service(), id, token)
}

func (s *KeyringStore) Delete(id string) error {
	err := keyring.Delete(s.service(), id)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// KeyringAvailable reports whether the system keyring answers lookups.
// A missing entry still counts as a working keyring.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_availability_check_")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
