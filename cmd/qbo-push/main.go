// qbo-push pushes quotes from the calculation engine into QuickBooks Online
// as estimates, downloading the rendered PDF and logging each push.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/greentech/qbo-push/internal/auth"
	"github.com/greentech/qbo-push/internal/config"
	"github.com/greentech/qbo-push/internal/credentials"
	"github.com/greentech/qbo-push/internal/logger"
	"github.com/greentech/qbo-push/internal/qbo"
)

// cli carries the pieces shared by the subcommands.
type cli struct {
	cfg        *config.Config
	log        zerolog.Logger
	useKeyring bool
}

func main() {
	c := &cli{
		cfg: config.Load(),
		log: logger.New(),
	}

	root := &cobra.Command{
		Use:           "qbo-push",
		Short:         "Push GreenTech quotes to QuickBooks Online as estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&c.useKeyring, "keyring", false, "store OAuth tokens in the OS keyring instead of the auth file")

	root.AddCommand(
		newPushCmd(c),
		newSetupCmd(c),
		newStatusCmd(c),
		newRevokeCmd(c),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func (c *cli) store() credentials.Store {
	if c.useKeyring {
		return credentials.NewKeyringStore()
	}
	path := c.cfg.AuthFile
	if path == "" {
		path = credentials.DefaultAuthPath()
	}
	return credentials.NewFileStore(path)
}

// session builds the token session, seeding the credential store from
// QBO_REFRESH_TOKEN on the very first run.
func (c *cli) session() (*auth.Session, error) {
	store := c.store()
	if _, err := credentials.Bootstrap(store, c.cfg.BootstrapRefreshToken); err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return nil, err
	}
	// An empty store is fine here: setup fills it, and every other command
	// surfaces ErrReauthRequired pointing at the setup flow.
	return auth.New(auth.Options{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Store:        store,
		Logger:       c.log,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	})
}

// client builds the API client for the configured realm. Configuration is
// validated here, before any network traffic.
func (c *cli) client() (*qbo.Client, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	session, err := c.session()
	if err != nil {
		return nil, err
	}
	return qbo.New(c.cfg.APIBaseURL(), c.cfg.RealmID, session, c.log), nil
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to render result: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
