// Package config loads the QuickBooks connection settings from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ModeSandbox targets the QuickBooks sandbox company.
	ModeSandbox = "sandbox"
	// ModeProduction targets the live QuickBooks company.
	ModeProduction = "production"

	sandboxAPIBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionAPIBaseURL = "https://quickbooks.api.intuit.com"
)

// Config holds the immutable process-lifetime settings for talking to
// QuickBooks Online. ClientID, ClientSecret and RealmID are required for any
// API call; BootstrapRefreshToken is only consulted when the credential store
// is empty (first run after out-of-band authorization).
type Config struct {
	ClientID              string
	ClientSecret          string
	RealmID               string
	Mode                  string
	AuthFile              string
	BootstrapRefreshToken string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present, matching how the integration is
// deployed next to the calculation engine.
func Load() *Config {
	// Missing .env is fine; real deployments may set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		ClientID:              os.Getenv("QBO_CLIENT_ID"),
		ClientSecret:          os.Getenv("QBO_CLIENT_SECRET"),
		RealmID:               os.Getenv("QBO_REALM_ID"),
		Mode:                  os.Getenv("QBO_MODE"),
		AuthFile:              os.Getenv("QBO_AUTH_FILE"),
		BootstrapRefreshToken: os.Getenv("QBO_REFRESH_TOKEN"),
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSandbox
	}
	return cfg
}

// Validate checks that every setting required before the first network call
// is present. It returns a single error naming all missing variables so the
// operator can fix the .env file in one pass.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "QBO_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "QBO_CLIENT_SECRET")
	}
	if c.RealmID == "" {
		missing = append(missing, "QBO_REALM_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Mode != ModeSandbox && c.Mode != ModeProduction {
		return fmt.Errorf("invalid QBO_MODE %q: must be %q or %q", c.Mode, ModeSandbox, ModeProduction)
	}
	return nil
}

// ValidateOAuthOnly checks the subset of settings needed for the setup and
// revoke flows, which run before a realm is known.
func (c *Config) ValidateOAuthOnly() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("missing required configuration: QBO_CLIENT_ID and QBO_CLIENT_SECRET must be set")
	}
	return nil
}

// APIBaseURL returns the QuickBooks API host for the configured mode.
func (c *Config) APIBaseURL() string {
	if c.Mode == ModeProduction {
		return productionAPIBaseURL
	}
	return sandboxAPIBaseURL
}
