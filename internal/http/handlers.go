package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/auth"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// LoginHandler exchanges the coach password for a session token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		token, expires, err := s.Sessions.Login(w, req.Password)
		if errors.Is(err, auth.ErrInvalidPassword) {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, loginResponse{Token: token, Expires: expires.UTC().Format(time.RFC3339)})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Sessions.Logout(w, r)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListPositionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"positions": s.Dashboard.Positions(),
			"teams":     s.Dashboard.Teams(),
		})
	}
}

func (s *Server) PositionStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position := urlParam(r, "position")
		stats, err := s.Dashboard.Stats(position)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"position": position, "stats": stats})
	}
}

func (s *Server) AddPositionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would add position", "position", req.Name)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := s.Dashboard.AddPosition(req.Name); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"positions": s.Dashboard.Positions()})
	}
}

func (s *Server) RemovePositionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position := urlParam(r, "position")
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would remove position", "position", position)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := s.Dashboard.RemovePosition(position); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AddStatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position := urlParam(r, "position")
		var req statRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would add stat", "position", position, "stat", req.Stat)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := s.Dashboard.AddStat(position, req.Stat); err != nil {
			respondError(w, err)
			return
		}
		stats, err := s.Dashboard.Stats(position)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"position": position, "stats": stats})
	}
}

func (s *Server) RemoveStatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, stat := urlParam(r, "position"), urlParam(r, "stat")
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would remove stat", "position", position, "stat", stat)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := s.Dashboard.RemoveStat(position, stat); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
