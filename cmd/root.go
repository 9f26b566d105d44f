package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "skc",
		Short:         "Skport check-in (skc): claim the Endfield daily reward for your accounts",
		Long:          "skc bootstraps per-run credentials for each configured account, checks today's attendance status, claims the daily reward when it is still unclaimed, and reports the outcome per account.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newCheckinCmd(app),
		newScheduleCmd(app),
		newAccountsCmd(app),
	)

	return rootCmd
}
