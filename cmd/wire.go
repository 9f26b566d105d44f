package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/bnema/skport-checkin/internal/adapters/notify"
	tomlrepo "github.com/bnema/skport-checkin/internal/adapters/repo/toml"
	"github.com/bnema/skport-checkin/internal/adapters/skport"
	"github.com/bnema/skport-checkin/internal/application"
	"github.com/bnema/skport-checkin/internal/domain"
	"github.com/bnema/skport-checkin/internal/ports"
)

type app struct {
	accounts ports.AccountSource
	service  *application.CheckInService
	notifier ports.Notifier
	logger   *slog.Logger
	cronSpec string
	clock    ports.Clock
}

func wireApp() (*app, error) {
	accounts, err := tomlrepo.NewSource(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire account source: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	client := skport.NewClient(skport.ClientConfig{
		ZonaiBaseURL: envOrDefault("SKC_ZONAI_BASE_URL", skport.DefaultZonaiBaseURL),
		AuthBaseURL:  envOrDefault("SKC_AUTH_BASE_URL", skport.DefaultAuthBaseURL),
	}, logger)

	var notifier ports.Notifier
	if webhookURL := os.Getenv("SKC_WEBHOOK_URL"); webhookURL != "" {
		notifier = notify.Webhook{URL: webhookURL}
	}

	return &app{
		accounts: accounts,
		service:  application.NewCheckInService(client, logger),
		notifier: notifier,
		logger:   logger,
		cronSpec: envOrDefault("SKC_CRON", "0 9 * * *"),
		clock:    ports.SystemClock{},
	}, nil
}

// runCheckInPass executes one orchestration run over all configured
// accounts and delivers the notification when a webhook is configured.
// Notification failures are logged, never fatal.
func runCheckInPass(ctx context.Context, app *app) ([]domain.CheckInOutcome, error) {
	accounts, err := app.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, domain.ErrNoAccounts
	}

	outcomes := app.service.RunAll(ctx, accounts)

	if app.notifier != nil {
		if err := app.notifier.Notify(ctx, outcomes); err != nil {
			app.logger.Warn("deliver notification", "error", err)
		}
	}

	return outcomes, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
