package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/greentech/qbo-push/internal/credentials"
)

// DefaultRedirectURI is Intuit's out-of-band redirect target for apps
// without their own callback server; the operator copies the code from the
// resulting URL.
const DefaultRedirectURI = "https://developer.intuit.com/oauth2/http-redirect"

// AccountingScope grants access to the accounting API plus the OpenID
// profile claims used during setup.
const AccountingScope = "com.intuit.quickbooks.accounting openid profile email"

// AuthorizeURL builds the consent-page URL the operator opens in a browser
// during the one-time setup flow.
func (s *Session) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", s.clientID)
	q.Set("response_type", "code")
	q.Set("scope", AccountingScope)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	return AuthorizeEndpoint + "?" + q.Encode()
}

// Authorize exchanges a one-time authorization code for a fresh token state,
// persists it, and clears any unrecoverable latch left by a dead refresh
// token. This is the only way back from the unrecoverable state.
func (s *Session) Authorize(ctx context.Context, code, redirectURI string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	resp, err := s.exchange(ctx, form)
	if err != nil {
		return fmt.Errorf("authorization code exchange failed: %w", err)
	}

	st := s.tokenState(resp)
	if err := s.store.Save(&st); err != nil {
		return fmt.Errorf("failed to persist initial tokens: %w", err)
	}

	s.mu.Lock()
	s.state = st
	s.fatal = nil
	s.mu.Unlock()

	s.log.Info().
		Time("access_expires_at", st.AccessExpiresAt).
		Time("refresh_expires_at", st.RefreshExpiresAt).
		Msg("authorization complete")
	return nil
}

// Revoke disconnects from QuickBooks: it revokes the current refresh token
// at the authorization server and clears the stored state.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.RLock()
	token := s.state.RefreshToken
	if token == "" {
		token = s.state.AccessToken
	}
	s.mu.RUnlock()

	if token == "" {
		return fmt.Errorf("no token to revoke")
	}

	payload, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return fmt.Errorf("failed to marshal revoke request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.revokeURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.clientID, s.clientSecret)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("token revocation failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	s.mu.Lock()
	s.state = credentials.TokenState{}
	s.fatal = nil
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("token revoked but store not cleared: %w", err)
	}
	return nil
}
