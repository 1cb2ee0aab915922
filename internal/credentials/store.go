// Package credentials persists the OAuth token state between CLI runs.
//
// QuickBooks rotates the refresh token on every use, so losing a write here
// strands a refresh token the server has already invalidated. Every Store
// implementation must therefore make Save atomic with respect to process
// restarts: after a crash the store holds either the old state or the new
// one, never a partial write.
package credentials

import (
	"errors"
	"time"
)

// ErrNotFound is returned by Load when no token state has been saved yet.
var ErrNotFound = errors.New("no stored credentials")

// TokenState is the full OAuth session state for one QuickBooks connection.
type TokenState struct {
	AccessToken       string    `json:"access_token,omitempty"`
	AccessExpiresAt   time.Time `json:"access_expires_at,omitempty"`
	RefreshToken      string    `json:"refresh_token"`
	RefreshObtainedAt time.Time `json:"refresh_obtained_at,omitempty"`
	RefreshExpiresAt  time.Time `json:"refresh_expires_at,omitempty"`
}

// Store reads and writes TokenState durably.
type Store interface {
	Load() (*TokenState, error)
	Save(*TokenState) error
	Clear() error
}
