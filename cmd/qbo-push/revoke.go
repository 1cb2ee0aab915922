package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRevokeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Disconnect from QuickBooks and clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.ValidateOAuthOnly(); err != nil {
				return err
			}
			session, err := c.session()
			if err != nil {
				return err
			}
			if err := session.Revoke(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Tokens revoked and cleared. Run 'qbo-push setup' to reconnect.")
			return nil
		},
	}
}
