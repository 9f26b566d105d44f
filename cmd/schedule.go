package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/skport-checkin/internal/application"
)

const scheduledRunTimeout = 10 * time.Minute

func newScheduleCmd(app *app) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the check-in on a cron cadence until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scheduler := application.NewScheduler(app.logger)

			err := scheduler.Schedule(cronSpec, func() {
				ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
				defer cancel()

				outcomes, err := runCheckInPass(ctx, app)
				if err != nil {
					app.logger.Error("scheduled check-in", "error", err)
					return
				}
				app.logger.Info("scheduled check-in complete", "accounts", len(outcomes))
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled daily check-in (%s). Press Ctrl+C to stop.\n", cronSpec)
			scheduler.Run(ctx)

			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", app.cronSpec, "Cron expression for the check-in cadence")

	return cmd
}
