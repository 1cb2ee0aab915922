package credentials

import (
	"errors"
	"fmt"
	"time"
)

// Bootstrap seeds an empty store from a refresh token obtained out-of-band
// (the QBO_REFRESH_TOKEN variable written after the initial authorization).
// A store that already holds state wins: its refresh token is newer, because
// QuickBooks rotates the token on every refresh and the environment value
// goes stale after the first run.
func Bootstrap(store Store, refreshToken string) (*TokenState, error) {
	st, err := store.Load()
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if refreshToken == "" {
		return nil, ErrNotFound
	}

	st = &TokenState{
		RefreshToken:      refreshToken,
		RefreshObtainedAt: time.Now(),
	}
	if err := store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to seed credential store: %w", err)
	}
	return st, nil
}
