package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.FromContext(ctx).Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallbackText(message), false),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.FromContext(ctx).Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.FromContext(ctx).Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendMatchResult posts the score line and both players' updated records.
func (s *Notifier) SendMatchResult(ctx context.Context, result notifier.MatchResult, dryRun bool) error {
	msg := formatMatchResult(result)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

func formatMatchResult(result notifier.MatchResult) slack.Message {
	m, u1, u2 := result.Match, result.User1, result.User2
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("Match #%d registered", m.ID), false, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	scoreLine := fmt.Sprintf("*%s* %d – %d *%s*", playerLabel(u1), m.User1Score, m.User2Score, playerLabel(u2))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", scoreLine, false, false), nil, nil))

	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", outcomeText(result), false, false), nil, nil))

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("mrkdwn", recordText(u1), false, false),
		slack.NewTextBlockObject("mrkdwn", recordText(u2), false, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Played %s UTC", m.Date.UTC().Format("Mon 02 Jan 2006, 15:04")), false, false),
	))

	return slack.NewBlockMessage(blocks...)
}

func outcomeText(result notifier.MatchResult) string {
	switch stats.Decide(result.Match.User1Score, result.Match.User2Score) {
	case stats.Win:
		return fmt.Sprintf(":trophy: %s wins!", result.User1.Name)
	case stats.Loss:
		return fmt.Sprintf(":trophy: %s wins!", result.User2.Name)
	default:
		return ":handshake: It's a tie. No win or loss recorded."
	}
}

func playerLabel(u club.User) string {
	if u.Team == "" {
		return u.Name
	}
	return fmt.Sprintf("%s (%s)", u.Name, u.Team)
}

func recordText(u club.User) string {
	return fmt.Sprintf("*%s*\n%dW – %dL\nPoints %d:%d", u.Name, u.Wins, u.Losses, u.ScoreFor, u.ScoreAgainst)
}

func fallbackText(message slack.Message) string {
	for _, b := range message.Blocks.BlockSet {
		if h, ok := b.(*slack.HeaderBlock); ok && h.Text != nil {
			return h.Text.Text
		}
	}
	return "Match registered"
}
