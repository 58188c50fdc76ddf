package summary

import (
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/records"
)

// DefaultRecent is how many matches a summary card lists.
const DefaultRecent = 3

// Card is the per-player summary shown on the player and coach views.
type Card struct {
	Player   string                `json:"player"`
	Team     string                `json:"team,omitempty"`
	Position string                `json:"position"`
	Matches  int                   `json:"matches"`
	Minutes  int                   `json:"minutes"`
	Totals   Totals                `json:"totals"`
	Recent   []records.MatchRecord `json:"recent"`
}

// Summarize builds a card for position, falling back to the first catalog
// position when it is unknown.
func Summarize(c *records.Collection, cat catalog.Catalog, position string, recent int) Card {
	resolved, stats := cat.Resolve(position)
	card := Card{
		Position: resolved,
		Matches:  TotalMatches(c),
		Minutes:  TotalMinutes(c),
		Totals:   SumStats(c, stats),
		Recent:   Recent(c, recent),
	}
	if c != nil {
		card.Player = c.Key.Player
		card.Team = c.Key.Team
	}
	return card
}
