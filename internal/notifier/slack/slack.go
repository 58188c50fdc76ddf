package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/notifier"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts coach notifications to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. Without a token every message is only logged.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	} else {
		log.Warn("SLACK_BOT_TOKEN not set, Slack notifications will only be logged")
	}
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

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendMatchRecorded tells the coaches channel that a player logged a match.
func (s *Notifier) SendMatchRecorded(card summary.Card, rec records.MatchRecord, dryRun bool) error {
	msg := s.formatMatchRecorded(card, rec)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatPlayerSummaryResponse formats a player summary for a slash command response.
func (s *Notifier) FormatPlayerSummaryResponse(card summary.Card) (any, error) {
	return s.formatPlayerSummary(card), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func (s *Notifier) formatMatchRecorded(card summary.Card, rec records.MatchRecord) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := fmt.Sprintf("⚽ %s logged a match", playerLabel(card))
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	matchText := fmt.Sprintf("*Opponent*: %s\n*Date*: %s\n*Minutes*: %d\n*Position*: %s",
		rec.Opponent,
		rec.Date.Format(records.DateLayout),
		rec.MinutesPlayed,
		rec.Position,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", matchText, false, false), nil, nil))

	if line := statLine(rec.Stats, card.Totals.Stats); line != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", line, false, false), nil, nil))
	}

	seasonText := fmt.Sprintf("Season so far: %d matches, %d minutes", card.Matches, card.Minutes)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", seasonText, false, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerSummary creates a Slack message with a player's summary card.
func (s *Notifier) formatPlayerSummary(card summary.Card) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("📊 Stats for %s", playerLabel(card))
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	overview := fmt.Sprintf("> *Position*: %s\n> *Matches Played*: %d\n> *Total Minutes*: %d",
		card.Position,
		card.Matches,
		card.Minutes,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", overview, false, false), nil, nil))

	if line := statLine(card.Totals.Values, card.Totals.Stats); line != "" {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", line, false, false), nil, nil))
	}

	if len(card.Recent) > 0 {
		var b strings.Builder
		b.WriteString("*Recent Matches*")
		for _, r := range card.Recent {
			fmt.Fprintf(&b, "\n• %s vs %s (%d')", r.Date.Format(records.DateLayout), r.Opponent, r.MinutesPlayed)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", b.String(), false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player has no records.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find any matches for *%s*. Check the spelling or the team.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

func playerLabel(card summary.Card) string {
	if card.Team == "" {
		return card.Player
	}
	return fmt.Sprintf("%s (%s)", card.Player, card.Team)
}

// statLine renders the values of stats in catalog order, skipping absent ones.
func statLine(values map[string]int, stats []string) string {
	parts := make([]string, 0, len(stats))
	for _, stat := range stats {
		v, ok := values[stat]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("*%s*: %d", catalog.DisplayName(stat), v))
	}
	return strings.Join(parts, " | ")
}
