package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Tear down the session and clear every credential backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.manager.Boot(cmd.Context())
			app.manager.Logout(cmd.Context())

			fmt.Fprintln(cmd.OutOrStdout(), app.manager.Notice())
			return nil
		},
	}
}
