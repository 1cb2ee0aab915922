package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, token state and the QuickBooks connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			fmt.Printf("Mode:  %s\n", c.cfg.Mode)
			fmt.Printf("Realm: %s\n", c.cfg.RealmID)

			session, err := c.session()
			if err != nil {
				return err
			}
			st := session.State()
			switch {
			case st.RefreshToken == "":
				fmt.Println("Token: not authorized (run 'qbo-push setup')")
			case st.AccessToken == "" || !st.AccessExpiresAt.After(time.Now()):
				fmt.Println("Token: access token expired, will refresh on next use")
			default:
				fmt.Printf("Token: valid until %s\n", st.AccessExpiresAt.Local())
			}
			if !st.RefreshExpiresAt.IsZero() {
				fmt.Printf("Refresh token expires: %s\n", st.RefreshExpiresAt.Local())
			}

			client, err := c.client()
			if err != nil {
				return err
			}
			company, err := client.GetCompanyInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Connected to: %s\n", company.CompanyName)
			return nil
		},
	}
}
