package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/skport-checkin/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Webhook posts a run summary to a messaging webhook. Delivery is best
// effort: callers log failures and move on, a run never fails because
// notification did.
type Webhook struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type payload struct {
	Text     string                  `json:"text"`
	Outcomes []domain.CheckInOutcome `json:"outcomes"`
}

func (w Webhook) Notify(ctx context.Context, outcomes []domain.CheckInOutcome) error {
	if w.URL == "" {
		return errors.New("webhook url is required")
	}

	body, err := json.Marshal(payload{
		Text:     summaryText(outcomes),
		Outcomes: outcomes,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (w Webhook) httpClient() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

func summaryText(outcomes []domain.CheckInOutcome) string {
	var b strings.Builder
	b.WriteString("Daily check-in results:\n")

	for _, outcome := range outcomes {
		name := outcome.AccountName
		if name == "" {
			name = string(outcome.AccountID)
		}

		switch outcome.Status {
		case domain.StatusClaimed:
			fmt.Fprintf(&b, "- %s: claimed %s\n", name, rewardList(outcome.Rewards))
		case domain.StatusAlreadyClaimed:
			fmt.Fprintf(&b, "- %s: already claimed\n", name)
		default:
			fmt.Fprintf(&b, "- %s: error: %s\n", name, outcome.Error)
		}
	}

	return b.String()
}

func rewardList(rewards []domain.RewardItem) string {
	if len(rewards) == 0 {
		return "no rewards"
	}

	parts := make([]string, 0, len(rewards))
	for _, reward := range rewards {
		parts = append(parts, fmt.Sprintf("%s x%d", reward.Name, reward.Count))
	}
	return strings.Join(parts, ", ")
}
