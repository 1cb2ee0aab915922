package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/greentech/qbo-push/internal/app"
)

func newPushCmd(c *cli) *cobra.Command {
	var (
		jsonPath string
		mock     bool
		outDir   string
		logPath  string
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Create a QuickBooks estimate from a calculation JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(jsonPath); err != nil {
				return fmt.Errorf("quote file not found: %s", jsonPath)
			}

			a := app.New(nil, c.log)
			if !mock {
				client, err := c.client()
				if err != nil {
					return err
				}
				a = app.New(client, c.log)
			}

			res, err := a.Run(cmd.Context(), app.Options{
				JSONPath: jsonPath,
				Mock:     mock,
				OutDir:   outDir,
				LogPath:  logPath,
			})
			// The result JSON goes to stdout either way; the spreadsheet
			// macro that invokes us parses it.
			printJSON(res)
			return err
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "path to the calculation JSON file")
	cmd.Flags().BoolVar(&mock, "mock", false, "write a local mock estimate instead of calling QuickBooks")
	cmd.Flags().StringVar(&outDir, "out-dir", "Quotes", "directory for downloaded estimate PDFs")
	cmd.Flags().StringVar(&logPath, "log", filepath.Join("logs", "quotes_log.csv"), "path to the CSV audit log")
	cmd.MarkFlagRequired("json")

	return cmd
}
