package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sologm/engine/internal/services"
)

// ScenesHandler serves scene lifecycle operations.
type ScenesHandler struct {
	service *services.NarrativeService
	logger  *slog.Logger
}

func NewScenesHandler(service *services.NarrativeService, logger *slog.Logger) *ScenesHandler {
	return &ScenesHandler{service: service, logger: logger}
}

// Get handles GET /v1/scenes/{id}
func (h *ScenesHandler) Get(w http.ResponseWriter, r *http.Request) {
	scene, err := h.service.GetScene(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, scene)
}

// Activate handles POST /v1/scenes/{id}/activate
func (h *ScenesHandler) Activate(w http.ResponseWriter, r *http.Request) {
	scene, err := h.service.ActivateScene(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, scene)
}

// Complete handles POST /v1/scenes/{id}/complete
func (h *ScenesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	scene, err := h.service.CompleteScene(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, scene)
}
