package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// parsePlayerStatsText splits "Jane Doe U15" into player and team when the
// last word names a configured team.
func parsePlayerStatsText(text string, teams []string) (player, team string) {
	parts := strings.Fields(text)
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		for _, t := range teams {
			if strings.EqualFold(last, t) {
				return strings.Join(parts[:len(parts)-1], " "), t
			}
		}
	}
	return strings.Join(parts, " "), ""
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		player, team := parsePlayerStatsText(r.FormValue("text"), s.Dashboard.Teams())
		if player == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", player, "team", team)

		var msg any
		key, err := s.Dashboard.Key(player, team)
		if err == nil {
			card, found, loadErr := s.Dashboard.PlayerSummary(r.Context(), key)
			switch {
			case loadErr != nil:
				err = loadErr
			case found:
				msg, err = s.Notifier.FormatPlayerSummaryResponse(card)
			default:
				msg, err = s.Notifier.FormatPlayerNotFoundResponse(strings.TrimSpace(player + " " + team))
			}
		}
		if err != nil {
			log.Error("Failed to build player stats response", "error", err, "player", player)
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, msg)
	}
}
