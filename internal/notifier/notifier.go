package notifier

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/club"
)

// MatchResult is a committed match with both players' records after it.
type MatchResult struct {
	Match club.Match
	User1 club.User
	User2 club.User
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	SendMatchResult(ctx context.Context, result MatchResult, dryRun bool) error
}

// Nop is used when no notification channel is configured.
type Nop struct{}

func (Nop) SendMatchResult(ctx context.Context, result MatchResult, dryRun bool) error {
	log.FromContext(ctx).Debug("Notifications disabled, skipping match result", "matchID", result.Match.ID)
	return nil
}
