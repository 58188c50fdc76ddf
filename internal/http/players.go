package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/mauv0809/academy-stats/internal/summary"
)

// playerKey builds the storage key from the {player} path parameter and the
// optional team query parameter.
func (s *Server) playerKey(w http.ResponseWriter, r *http.Request) (records.Key, bool) {
	key, err := s.Dashboard.Key(urlParam(r, "player"), r.URL.Query().Get("team"))
	if err != nil {
		respondError(w, err)
		return records.Key{}, false
	}
	return key, true
}

func recentParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("recent")
	if raw == "" {
		return summary.DefaultRecent, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(urlParam(r, "index"))
	if err != nil {
		badRequest(w, "index must be an integer")
		return 0, false
	}
	return index, true
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (records.MatchRecord, bool) {
	var rec records.MatchRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		log.Debug("Rejected match body", "error", err)
		badRequest(w, "invalid match record: "+err.Error())
		return records.MatchRecord{}, false
	}
	return rec, true
}

// PlayerViewHandler returns the summary card and match list for one player.
func (s *Server) PlayerViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		recent, ok := recentParam(r)
		if !ok {
			badRequest(w, "recent must be an integer")
			return
		}
		view, err := s.Dashboard.PlayerView(r.Context(), key, r.URL.Query().Get("position"), recent)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		c, err := s.Dashboard.Matches(r.Context(), key)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func (s *Server) AddMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		c, err := s.Dashboard.AddMatch(r.Context(), key, rec, isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		status := http.StatusCreated
		if isDryRunFromContext(r) {
			status = http.StatusOK
		}
		respondJSON(w, status, c)
	}
}

func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		c, err := s.Dashboard.EditMatch(r.Context(), key, index, rec, isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		index, ok := indexParam(w, r)
		if !ok {
			return
		}
		c, err := s.Dashboard.DeleteMatch(r.Context(), key, index, isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func (s *Server) TrendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		stat := r.URL.Query().Get("stat")
		if stat == "" {
			badRequest(w, "stat is required")
			return
		}
		points, err := s.Dashboard.Trend(r.Context(), key, stat)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"stat": stat, "points": points})
	}
}

func (s *Server) AverageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := s.playerKey(w, r)
		if !ok {
			return
		}
		stat := r.URL.Query().Get("stat")
		if stat == "" {
			badRequest(w, "stat is required")
			return
		}
		avg, defined, err := s.Dashboard.Average(r.Context(), key, stat)
		if err != nil {
			respondError(w, err)
			return
		}
		body := map[string]any{"stat": stat, "defined": defined}
		if defined {
			body["average"] = avg
		}
		respondJSON(w, http.StatusOK, body)
	}
}

// ListPlayersHandler lists every stored player of a team for the coach view.
func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := r.URL.Query().Get("team")
		players, err := s.Dashboard.ListPlayers(r.Context(), team)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"team": team, "players": players})
	}
}

// CoachOverviewHandler returns a summary card per selected player.
func (s *Server) CoachOverviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []string
		for _, p := range strings.Split(r.URL.Query().Get("players"), ",") {
			if p = strings.TrimSpace(p); p != "" {
				players = append(players, p)
			}
		}
		if len(players) == 0 {
			badRequest(w, "select at least one player")
			return
		}
		recent, ok := recentParam(r)
		if !ok {
			badRequest(w, "recent must be an integer")
			return
		}
		entries, err := s.Dashboard.CoachOverview(r.Context(), players, r.URL.Query().Get("team"), recent)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"players": entries})
	}
}
