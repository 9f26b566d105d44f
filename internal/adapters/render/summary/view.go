package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/skport-checkin/internal/domain"
)

type RenderOptions struct {
	Now time.Time
}

func Render(outcomes []domain.CheckInOutcome, opts RenderOptions) string {
	return renderView(outcomes, opts, newStyles())
}

func renderView(outcomes []domain.CheckInOutcome, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Endfield Daily Check-In"),
		s.header.Render(headerLine(outcomes, opts)),
	}

	if len(outcomes) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, outcome := range outcomes {
		lines = append(lines, s.section.Render(renderOutcome(outcome, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(outcomes []domain.CheckInOutcome, opts RenderOptions) string {
	line := fmt.Sprintf("accounts: %d", len(outcomes))
	if !opts.Now.IsZero() {
		line += opts.Now.Format(" · 2006-01-02 15:04")
	}
	return line
}

func renderOutcome(outcome domain.CheckInOutcome, s styles) string {
	parts := []string{
		s.account.Render(accountTitle(outcome)),
		statusLine(outcome, s),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(outcome domain.CheckInOutcome) string {
	name := strings.TrimSpace(outcome.AccountName)
	if name == "" {
		return string(outcome.AccountID)
	}
	return fmt.Sprintf("%s (%s)", name, outcome.AccountID)
}

func statusLine(outcome domain.CheckInOutcome, s styles) string {
	switch outcome.Status {
	case domain.StatusClaimed:
		line := s.claimed.Render("✓ claimed")
		if len(outcome.Rewards) > 0 {
			line += " " + s.reward.Render(rewardList(outcome.Rewards))
		}
		return line
	case domain.StatusAlreadyClaimed:
		return s.skipped.Render("– already claimed today")
	default:
		return s.failed.Render("✗ " + outcome.Error)
	}
}

func rewardList(rewards []domain.RewardItem) string {
	parts := make([]string, 0, len(rewards))
	for _, reward := range rewards {
		parts = append(parts, fmt.Sprintf("%s x%d", reward.Name, reward.Count))
	}
	return strings.Join(parts, ", ")
}
