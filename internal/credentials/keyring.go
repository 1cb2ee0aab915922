package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "qbo-push"
	keyringUser    = "quickbooks-oauth"
)

// KeyringStore persists token state in the OS keyring (Keychain on macOS,
// Secret Service on Linux, Credential Manager on Windows). Keyring writes
// replace the whole secret in one call, which satisfies the atomicity
// requirement without extra locking.
type KeyringStore struct{}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (k *KeyringStore) Load() (*TokenState, error) {
	secret, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	var st TokenState
	if err := json.Unmarshal([]byte(secret), &st); err != nil {
		return nil, fmt.Errorf("failed to parse keyring credentials: %w", err)
	}
	if st.RefreshToken == "" && st.AccessToken == "" {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (k *KeyringStore) Save(st *TokenState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal token state: %w", err)
	}
	if err := keyring.Set(keyringService, keyringUser, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear keyring: %w", err)
	}
	return nil
}
