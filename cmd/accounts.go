package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect configured accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := app.accounts.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No accounts configured.")
				return err
			}

			for _, account := range accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\trole=%s\ttoken=%s\n", account.Name, account.GameRoleID, redactToken(account.Token))
			}

			return nil
		},
	})

	return cmd
}

func redactToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
