// Package auth maintains the OAuth 2.0 session with the Intuit authorization
// server: a short-lived bearer access token, refreshed lazily through the
// long-lived rotating refresh token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/greentech/qbo-push/internal/credentials"
)

const (
	// TokenEndpoint is the Intuit OAuth bearer token endpoint.
	TokenEndpoint = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	// RevokeEndpoint is the Intuit token revocation endpoint.
	RevokeEndpoint = "https://developer.api.intuit.com/v2/oauth2/tokens/revoke"
	// AuthorizeEndpoint is the browser-facing consent page for the setup flow.
	AuthorizeEndpoint = "https://appcenter.intuit.com/connect/oauth2"

	// ExpiryMargin is how long before access-token expiry a refresh is
	// triggered. Access tokens live one hour; refreshing five minutes early
	// keeps in-flight API calls from racing the expiry.
	ExpiryMargin = 5 * time.Minute

	maxRefreshAttempts = 3
	refreshBackoffBase = 500 * time.Millisecond
)

// Options configures a Session.
type Options struct {
	ClientID     string
	ClientSecret string
	Store        credentials.Store
	Logger       zerolog.Logger

	// TokenURL and RevokeURL override the Intuit endpoints, for tests.
	TokenURL   string
	RevokeURL  string
	HTTPClient *http.Client
}

// Session owns the token state for one QuickBooks connection. It hands out a
// valid access token on demand, refreshing through the credential store's
// refresh token when the cached token is within ExpiryMargin of expiry.
// Concurrent callers share a single in-flight refresh exchange: duplicate
// refresh calls are not idempotent on the server side and would invalidate
// each other's rotated tokens.
type Session struct {
	clientID     string
	clientSecret string
	tokenURL     string
	revokeURL    string
	store        credentials.Store
	httpc        *http.Client
	log          zerolog.Logger

	mu    sync.RWMutex
	state credentials.TokenState
	fatal error

	group singleflight.Group

	margin      time.Duration
	maxAttempts int
	backoffBase time.Duration
	now         func() time.Time
}

// New creates a Session, loading any previously persisted token state from
// the store. An empty store is not an error; the session starts without a
// token and fails with ErrReauthRequired until Authorize runs.
func New(opts Options) (*Session, error) {
	s := &Session{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		tokenURL:     opts.TokenURL,
		revokeURL:    opts.RevokeURL,
		store:        opts.Store,
		httpc:        opts.HTTPClient,
		log:          opts.Logger,
		margin:       ExpiryMargin,
		maxAttempts:  maxRefreshAttempts,
		backoffBase:  refreshBackoffBase,
		now:          time.Now,
	}
	if s.tokenURL == "" {
		s.tokenURL = TokenEndpoint
	}
	if s.revokeURL == "" {
		s.revokeURL = RevokeEndpoint
	}
	if s.httpc == nil {
		s.httpc = &http.Client{Timeout: 30 * time.Second}
	}

	st, err := opts.Store.Load()
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			return nil, fmt.Errorf("failed to load token state: %w", err)
		}
		return s, nil
	}
	s.state = *st
	return s, nil
}

// AccessToken returns a currently valid bearer token. A cached token whose
// expiry is more than ExpiryMargin away is returned without any network
// call. Otherwise one refresh exchange runs; concurrent callers block on its
// result instead of issuing their own.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.fatal != nil {
		err := s.fatal
		s.mu.RUnlock()
		return "", err
	}
	if s.tokenValidLocked() {
		token := s.state.AccessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// tokenValidLocked reports whether the cached access token is usable without
// a refresh. Callers must hold mu.
func (s *Session) tokenValidLocked() bool {
	return s.state.AccessToken != "" && s.now().Before(s.state.AccessExpiresAt.Add(-s.margin))
}

// State returns a snapshot of the current token state.
func (s *Session) State() credentials.TokenState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.fatal != nil {
		err := s.fatal
		s.mu.Unlock()
		return "", err
	}
	// A caller that queued behind a finished flight sees the fresh token here.
	if s.tokenValidLocked() {
		token := s.state.AccessToken
		s.mu.Unlock()
		return token, nil
	}
	refreshToken := s.state.RefreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		return "", fmt.Errorf("no refresh token stored: %w", ErrReauthRequired)
	}

	s.log.Info().Msg("refreshing access token")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	resp, err := s.exchange(ctx, form)
	if err != nil {
		if errors.Is(err, ErrReauthRequired) {
			s.mu.Lock()
			s.fatal = err
			s.mu.Unlock()
			s.log.Error().Err(err).Msg("refresh token rejected; session is unrecoverable")
		}
		return "", err
	}

	st := s.tokenState(resp)
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	// The server already rotated the refresh token; losing this write means
	// the next process needs re-authorization, but this one keeps working on
	// the in-memory state.
	if err := s.store.Save(&st); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed tokens; keeping in-memory session")
	}

	s.log.Info().
		Time("access_expires_at", st.AccessExpiresAt).
		Msg("access token refreshed")

	return st.AccessToken, nil
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken          string `json:"access_token"`
	RefreshToken         string `json:"refresh_token"`
	TokenType            string `json:"token_type"`
	ExpiresIn            int64  `json:"expires_in"`
	XRefreshTokenExpires int64  `json:"x_refresh_token_expires_in"`
}

// tokenErrorResponse is the OAuth error body on 4xx responses.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *Session) tokenState(resp *tokenResponse) credentials.TokenState {
	now := s.now()
	return credentials.TokenState{
		AccessToken:       resp.AccessToken,
		AccessExpiresAt:   now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		RefreshToken:      resp.RefreshToken,
		RefreshObtainedAt: now,
		RefreshExpiresAt:  now.Add(time.Duration(resp.XRefreshTokenExpires) * time.Second),
	}
}

// exchange posts the form to the token endpoint, retrying transport errors
// and 5xx responses with exponential backoff up to the attempt budget.
func (s *Session) exchange(ctx context.Context, form url.Values) (*tokenResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.backoffDelay(attempt - 1)
			s.log.Warn().
				Err(lastErr).
				Int("attempt", attempt-1).
				Dur("retry_in", delay).
				Msg("token exchange failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTransient, ctx.Err())
			}
		}

		resp, retryable, err := s.exchangeOnce(ctx, form)
		if err == nil {
			return resp, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrTransient, s.maxAttempts, lastErr)
}

func (s *Session) exchangeOnce(ctx context.Context, form url.Values) (resp *tokenResponse, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.clientID, s.clientSecret)

	httpResp, err := s.httpc.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("token request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, true, fmt.Errorf("token endpoint returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		var oauthErr tokenErrorResponse
		if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Error == "invalid_grant" {
			return nil, false, fmt.Errorf("token exchange rejected (invalid_grant): %w", ErrReauthRequired)
		}
		return nil, false, fmt.Errorf("token exchange failed with status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&tr); err != nil {
		return nil, false, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" {
		return nil, false, fmt.Errorf("token response missing access_token or refresh_token")
	}
	return &tr, false, nil
}

func (s *Session) backoffDelay(attempt int) time.Duration {
	delay := s.backoffBase * time.Duration(1<<(attempt-1))
	if n := int64(s.backoffBase / 5); n > 0 {
		delay += time.Duration(rand.Int63n(n))
	}
	return delay
}
