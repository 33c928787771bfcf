package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the resolved user record for the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.manager.Boot(cmd.Context())

			user := app.manager.User()
			if user == nil {
				return fmt.Errorf("no authenticated session")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
}
