package cmd

import "github.com/spf13/cobra"

func Execute() error {
	rootCmd, cleanup := newRootCmd()
	defer cleanup()
	return rootCmd.Execute()
}

func newRootCmd() (*cobra.Command, func()) {
	rootCmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office session tool: inspect and drive the operator session lifecycle",
		Long:          "backoffice manages the persisted operator session for the retail-financing back office: log in with a token issued by the login endpoint, inspect the reconciled session, and tear it down.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd, func() {}
	}

	rootCmd.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newWhoamiCmd(app),
	)

	return rootCmd, func() { _ = app.close() }
}
