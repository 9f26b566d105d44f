package ports

import (
	"context"

	"github.com/bnema/skport-checkin/internal/domain"
)

type AccountSource interface {
	List(ctx context.Context) ([]domain.Account, error)
}
