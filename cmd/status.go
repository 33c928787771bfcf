package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	session "github.com/goliatone/go-session"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the reconciled session state and where credentials rest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			location, err := app.store.Locate(cmd.Context())
			if err != nil {
				return fmt.Errorf("probe credential storage: %w", err)
			}

			app.manager.Boot(cmd.Context())
			snap := app.manager.Snapshot()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"authenticated": snap.Authenticated,
					"loading":       snap.Loading,
					"user":          snap.User,
					"storage":       location,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "storage: %s\n%s", location, renderSnapshot(snap))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")

	return cmd
}

func renderSnapshot(snap session.Snapshot) string {
	var b strings.Builder

	if !snap.Authenticated {
		b.WriteString("session: unauthenticated\n")
		return b.String()
	}

	b.WriteString("session: authenticated\n")
	if snap.User != nil {
		fmt.Fprintf(&b, "user: %s", snap.User.ID)
		if snap.User.Name != "" {
			fmt.Fprintf(&b, " (%s)", snap.User.Name)
		}
		b.WriteString("\n")
		if snap.User.Role != "" {
			fmt.Fprintf(&b, "role: %s\n", snap.User.Role)
		}
	}
	if snap.Notice != "" {
		fmt.Fprintf(&b, "notice: %s\n", snap.Notice)
	}

	return b.String()
}
