package ports

import (
	"context"

	"github.com/bnema/skport-checkin/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, outcomes []domain.CheckInOutcome) error
}
