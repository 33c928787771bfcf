package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	session "github.com/goliatone/go-session"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		token      string
		userJSON   string
		userFile   string
		skipDetail bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Persist a session from a token and user record issued by the login endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return fmt.Errorf("a --token is required")
			}

			payload := []byte(userJSON)
			if userFile != "" {
				data, err := os.ReadFile(userFile)
				if err != nil {
					return fmt.Errorf("read user file: %w", err)
				}
				payload = data
			}

			var user *session.User
			if len(payload) > 0 {
				decoded, err := session.DecodeUser(payload)
				if err != nil {
					return fmt.Errorf("parse user record: %w", err)
				}
				user = decoded
			}

			app.manager.Boot(cmd.Context())

			var opts []session.LoginOption
			if skipDetail {
				opts = append(opts, session.WithSkipUserDetail())
			}
			app.manager.Login(cmd.Context(), token, user, opts...)

			snap := app.manager.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s", renderSnapshot(snap))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the login endpoint")
	cmd.Flags().StringVar(&userJSON, "user", "", "User record as inline JSON")
	cmd.Flags().StringVar(&userFile, "user-file", "", "Path to a JSON file with the user record")
	cmd.Flags().BoolVar(&skipDetail, "skip-detail", false, "Skip the user-detail hydration call")

	return cmd
}
