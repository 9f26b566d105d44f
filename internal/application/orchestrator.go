package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bnema/skport-checkin/internal/domain"
	"github.com/bnema/skport-checkin/internal/ports"
)

const (
	ConcurrentLimit  = 3
	DefaultPaceDelay = time.Second
)

// CheckInService drives the per-account check-in pipelines with bounded
// parallelism. Outcome slots are index-addressed: the outcome for input
// account i always lands at output index i regardless of completion
// order. Pace holds an account's concurrency slot for the configured
// delay after its pipeline completes (skipped for the last input), so
// pacing happens per slot, not globally.
type CheckInService struct {
	Client ports.CheckInClient
	Logger *slog.Logger
	Limit  int
	Pace   time.Duration
}

func NewCheckInService(client ports.CheckInClient, logger *slog.Logger) *CheckInService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CheckInService{
		Client: client,
		Logger: logger,
		Limit:  ConcurrentLimit,
		Pace:   DefaultPaceDelay,
	}
}

func (s *CheckInService) RunAll(ctx context.Context, accounts []domain.Account) []domain.CheckInOutcome {
	outcomes := make([]domain.CheckInOutcome, len(accounts))

	limit := s.Limit
	if limit <= 0 {
		limit = ConcurrentLimit
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func(index int, account domain.Account) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[index] = s.runPipeline(ctx, account)

			if s.Pace > 0 && index != len(accounts)-1 {
				s.pace(ctx)
			}
		}(i, account)
	}
	wg.Wait()

	return outcomes
}

// runPipeline executes init -> check -> claim for one account,
// short-circuiting on the first failure. Panics (contract violations
// included) are converted into an error outcome so one account can never
// abort the batch.
func (s *CheckInService) runPipeline(ctx context.Context, account domain.Account) (outcome domain.CheckInOutcome) {
	outcome = domain.CheckInOutcome{AccountID: account.ID(), AccountName: account.Name}

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("check-in pipeline panic", "account", account.ID(), "panic", r)
			outcome.Status = domain.StatusError
			outcome.Rewards = nil
			outcome.Error = fmt.Sprint(r)
		}
	}()

	if !s.Client.InitCredentials(ctx, account) {
		outcome.Status = domain.StatusError
		outcome.Error = "Failed to initialize credentials"
		return outcome
	}

	check := s.Client.CheckStatus(ctx, account)
	if !check.OK() {
		outcome.Status = domain.StatusError
		outcome.Error = check.Message
		return outcome
	}
	if check.Data != nil && check.Data.HasToday {
		s.Logger.Info("already claimed today", "account", account.ID())
		outcome.Status = domain.StatusAlreadyClaimed
		return outcome
	}

	claim := s.Client.ClaimReward(ctx, account)
	if !claim.OK() {
		outcome.Status = domain.StatusError
		outcome.Error = claim.Message
		return outcome
	}

	outcome.Status = domain.StatusClaimed
	if claim.Data != nil {
		outcome.Rewards = sortedRewards(claim.Data.Awards)
	}
	s.Logger.Info("reward claimed", "account", account.ID(), "rewards", len(outcome.Rewards))

	return outcome
}

func (s *CheckInService) pace(ctx context.Context) {
	timer := time.NewTimer(s.Pace)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
	case <-timer.C:
	}
}

// sortedRewards flattens the award map into a list ordered by resource
// name; the wire map has no stable key order.
func sortedRewards(awards map[string]domain.Award) []domain.RewardItem {
	rewards := make([]domain.RewardItem, 0, len(awards))
	for name, award := range awards {
		rewards = append(rewards, domain.RewardItem{Name: name, Count: award.Count, Icon: award.Icon})
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].Name < rewards[j].Name })

	return rewards
}
