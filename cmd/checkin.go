package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/skport-checkin/internal/adapters/render/summary"
	"github.com/bnema/skport-checkin/internal/domain"
)

func newCheckinCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Run the daily check-in for all configured accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var outcomes []domain.CheckInOutcome

			err := runCheckinSpinner(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context) error {
				var runErr error
				outcomes, runErr = runCheckInPass(ctx, app)
				return runErr
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outcomes)
			}

			rendered := summary.Render(outcomes, summary.RenderOptions{Now: app.clock.Now()})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print outcomes as JSON")

	return cmd
}
