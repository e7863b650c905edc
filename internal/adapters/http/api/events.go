// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"
)

// EventsHandler handles event creation requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleCreateEvent handles POST /create_event?event_name=X requests.
func (h *EventsHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	eventName := strings.TrimSpace(r.URL.Query().Get("event_name"))
	if eventName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: event_name is required", op, ErrBadRequest))
		return
	}
	res, err := h.deps.CreateEvent(r.Context(), eventName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, res.Status, res)
}
