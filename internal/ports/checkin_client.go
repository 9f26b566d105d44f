package ports

import (
	"context"

	"github.com/bnema/skport-checkin/internal/domain"
)

type CheckInClient interface {
	InitCredentials(ctx context.Context, account domain.Account) bool
	CheckStatus(ctx context.Context, account domain.Account) domain.Result[domain.AttendanceData]
	ClaimReward(ctx context.Context, account domain.Account) domain.Result[domain.ClaimData]
}
