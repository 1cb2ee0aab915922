package auth

import "errors"

// ErrReauthRequired means the refresh token itself was rejected by the
// authorization server (invalid_grant). The session cannot recover on its
// own: a human must run the setup flow again. Callers must not retry.
var ErrReauthRequired = errors.New("authorization expired: re-run setup to reconnect QuickBooks")

// ErrTransient means the token endpoint could not be reached or answered
// with a server error for every attempt in the retry budget. The operation
// may be retried later.
var ErrTransient = errors.New("token endpoint unavailable")
