package handler

import (
	"encoding/json"
	"net/http"

	"classpulse/internal/model"
	"classpulse/internal/session"
)

// SessionHandler exposes read-only views of the live session.
type SessionHandler struct {
	coord *session.Coordinator
}

func NewSessionHandler(coord *session.Coordinator) *SessionHandler {
	return &SessionHandler{coord: coord}
}

// PollStatus handles GET /v1/session/poll
func (h *SessionHandler) PollStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Status())
}

// History handles GET /v1/session/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	records := h.coord.HistorySnapshot()
	if records == nil {
		records = []model.PollRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(records),
		"polls": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
