package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/records"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondError maps domain errors onto status codes.
func respondError(w http.ResponseWriter, err error) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Fields: verr.Fields})
	case errors.Is(err, catalog.ErrUnknownPosition):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, records.ErrIndexOutOfRange):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, records.ErrUnknownTeam),
		errors.Is(err, records.ErrInvalidPlayer),
		errors.Is(err, catalog.ErrInvalidName):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Error("Request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
