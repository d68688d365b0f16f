package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sologm/engine/internal/services"
	"github.com/sologm/engine/pkg/narrative"
)

// OracleHandler serves interpretation generation, retry, and selection.
type OracleHandler struct {
	oracle *services.OracleService
	logger *slog.Logger
}

func NewOracleHandler(oracle *services.OracleService, logger *slog.Logger) *OracleHandler {
	return &OracleHandler{oracle: oracle, logger: logger}
}

type InterpretRequest struct {
	Question      string `json:"question"`
	OracleResults string `json:"oracle_results"`
	Count         int    `json:"count,omitempty"`
}

// Interpret handles POST /v1/scenes/{id}/interpretations
func (h *OracleHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	set, err := h.oracle.GetInterpretations(r.Context(), r.PathValue("id"),
		req.Question, req.OracleResults, req.Count)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, set)
}

// Retry handles POST /v1/scenes/{id}/interpretations/retry
func (h *OracleHandler) Retry(w http.ResponseWriter, r *http.Request) {
	set, err := h.oracle.RetryInterpretations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, set)
}

// Current handles GET /v1/scenes/{id}/interpretations/current
func (h *OracleHandler) Current(w http.ResponseWriter, r *http.Request) {
	sceneID := r.PathValue("id")
	set, err := h.oracle.GetCurrentInterpretationSet(r.Context(), sceneID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if set == nil {
		writeError(w, h.logger, &narrative.NotFoundError{Entity: "interpretation set", ID: "current for scene " + sceneID})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, set)
}

// GetSet handles GET /v1/interpretation-sets/{id}
func (h *OracleHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.oracle.GetInterpretationSet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, set)
}

type SelectRequest struct {
	InterpretationID string `json:"interpretation_id"`
	// AddEvent defaults to true when omitted.
	AddEvent *bool `json:"add_event,omitempty"`
}

type SelectResponse struct {
	Interpretation *narrative.Interpretation `json:"interpretation"`
	Event          *narrative.Event          `json:"event,omitempty"`
}

// Select handles POST /v1/interpretation-sets/{id}/select
func (h *OracleHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.InterpretationID == "" {
		writeError(w, h.logger, &narrative.ValidationError{Msg: "interpretation_id is required"})
		return
	}

	addEvent := req.AddEvent == nil || *req.AddEvent
	interp, event, err := h.oracle.SelectInterpretation(r.Context(), r.PathValue("id"), req.InterpretationID, addEvent)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, SelectResponse{
		Interpretation: interp,
		Event:          event,
	})
}
