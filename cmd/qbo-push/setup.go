package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greentech/qbo-push/internal/auth"
)

// newSetupCmd runs the one-time OAuth authorization flow: the operator
// opens the consent URL, connects the company, and pastes the resulting
// code and realm id back in.
func newSetupCmd(c *cli) *cobra.Command {
	var redirectURI string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Authorize qbo-push against a QuickBooks company (one-time)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.ValidateOAuthOnly(); err != nil {
				return err
			}

			session, err := c.session()
			if err != nil {
				return err
			}

			state, err := randomState()
			if err != nil {
				return err
			}

			fmt.Println("Open this URL in a browser, sign in, and connect your company:")
			fmt.Println()
			fmt.Println("  " + session.AuthorizeURL(redirectURI, state))
			fmt.Println()
			fmt.Printf("You will be redirected to %s?code=...&realmId=...&state=...\n", redirectURI)
			fmt.Println()

			reader := bufio.NewReader(os.Stdin)
			code, err := prompt(reader, "Paste the 'code' parameter: ")
			if err != nil {
				return err
			}
			realmID, err := prompt(reader, "Paste the 'realmId' parameter: ")
			if err != nil {
				return err
			}

			if err := session.Authorize(cmd.Context(), code, redirectURI); err != nil {
				return err
			}

			st := session.State()
			fmt.Println()
			fmt.Println("Authorization complete. Tokens saved.")
			fmt.Printf("  Access token expires:  %s\n", st.AccessExpiresAt.Local())
			fmt.Printf("  Refresh token expires: %s\n", st.RefreshExpiresAt.Local())
			fmt.Println()
			fmt.Println("Add the realm id to your .env file:")
			fmt.Printf("  QBO_REALM_ID=%s\n", realmID)
			return nil
		},
	}

	cmd.Flags().StringVar(&redirectURI, "redirect-uri", auth.DefaultRedirectURI, "OAuth redirect URI registered with the Intuit app")
	return cmd
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no value provided")
	}
	return line, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
