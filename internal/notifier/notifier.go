package notifier

import (
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
)

// Notifier defines a high-level interface for telling coaches about record changes.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For newly recorded matches
	SendMatchRecorded(card summary.Card, rec records.MatchRecord, dryRun bool) error

	// For formatting responses for slash commands
	FormatPlayerSummaryResponse(card summary.Card) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
