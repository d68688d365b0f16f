package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sologm/engine/internal/services"
	"github.com/sologm/engine/pkg/narrative"
)

// EventsHandler serves event logging and dice rolls for a scene.
type EventsHandler struct {
	service *services.NarrativeService
	logger  *slog.Logger
}

func NewEventsHandler(service *services.NarrativeService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{service: service, logger: logger}
}

type AddEventRequest struct {
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

// AddEvent handles POST /v1/scenes/{id}/events. Source defaults to
// "manual"; "oracle" events are created through interpretation
// selection, not here.
func (h *EventsHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req AddEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	source := narrative.EventSource(req.Source)
	if req.Source == "" {
		source = narrative.SourceManual
	}
	if source != narrative.SourceManual && source != narrative.SourceDice {
		writeError(w, h.logger, &narrative.ValidationError{
			Msg: "source must be \"manual\" or \"dice\"",
		})
		return
	}

	event, err := h.service.AddEvent(r.Context(), r.PathValue("id"), req.Description, source)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, event)
}

// ListEvents handles GET /v1/scenes/{id}/events?limit=N
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListRecentEvents(r.Context(), r.PathValue("id"), queryLimit(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, events)
}

type RollDiceRequest struct {
	Notation string `json:"notation"`
	Reason   string `json:"reason,omitempty"`
}

// RollDice handles POST /v1/scenes/{id}/rolls
func (h *EventsHandler) RollDice(w http.ResponseWriter, r *http.Request) {
	var req RollDiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	roll, err := h.service.RollDice(r.Context(), r.PathValue("id"), req.Notation, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, roll)
}

// ListRolls handles GET /v1/scenes/{id}/rolls?limit=N
func (h *EventsHandler) ListRolls(w http.ResponseWriter, r *http.Request) {
	rolls, err := h.service.ListDiceRolls(r.Context(), r.PathValue("id"), queryLimit(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, rolls)
}

// queryLimit parses ?limit=N, returning 0 (no cap) when absent or bad.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
