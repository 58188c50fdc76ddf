package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// RecordEventsPushHandler receives Pub/Sub push deliveries of record events
// and drops the affected collection from the read cache.
func (s *Server) RecordEventsPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received record event message", "body", string(bodyBytes))

		var pushMsg pushEnvelope
		if err := json.Unmarshal(bodyBytes, &pushMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		event, err := s.Dashboard.ApplyRecordEvent(r.Context(), rawData)
		if err != nil {
			log.Error("Failed to apply record event", "error", err, "event", pushMsg.Message.Attributes["event"])
			http.Error(w, "Invalid record event", http.StatusBadRequest)
			return
		}
		log.Info("Applied record event", "event", pushMsg.Message.Attributes["event"], "player", event.Player, "team", event.Team)
		w.Write([]byte("OK"))
	}
}
