package dashboard

import (
	"time"

	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/notifier"
	"github.com/mauv0809/academy-stats/internal/pubsub"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
)

// Service handles the business logic behind the player and coach views.
type Service struct {
	catalog  *catalog.Service
	store    *records.Store
	teams    records.Teams
	metrics  metrics.Metrics
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
}

// PlayerView is everything the player page shows for one key.
type PlayerView struct {
	Found   bool                  `json:"found"`
	Stats   []string              `json:"stats"`
	Columns []string              `json:"columns"`
	Card    summary.Card          `json:"summary"`
	Records []records.MatchRecord `json:"matches"`
}

// OverviewEntry is one selected player in the coach overview. Card is nil
// when NoData is set.
type OverviewEntry struct {
	Player string        `json:"player"`
	NoData bool          `json:"no_data"`
	Card   *summary.Card `json:"summary,omitempty"`
}

// RecordEvent is published after every persisted record mutation.
type RecordEvent struct {
	Player string               `msgpack:"player"`
	Team   string               `msgpack:"team,omitempty"`
	Index  int                  `msgpack:"index"`
	Record *records.MatchRecord `msgpack:"record,omitempty"`
	At     time.Time            `msgpack:"at"`
}

// CatalogEvent is published after a catalog mutation request.
type CatalogEvent struct {
	Action   string    `msgpack:"action"`
	Position string    `msgpack:"position"`
	Stat     string    `msgpack:"stat,omitempty"`
	At       time.Time `msgpack:"at"`
}
