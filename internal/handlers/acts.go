package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sologm/engine/internal/services"
)

// ActsHandler serves act operations and scene creation within an act.
type ActsHandler struct {
	service *services.NarrativeService
	logger  *slog.Logger
}

func NewActsHandler(service *services.NarrativeService, logger *slog.Logger) *ActsHandler {
	return &ActsHandler{service: service, logger: logger}
}

// Get handles GET /v1/acts/{id}
func (h *ActsHandler) Get(w http.ResponseWriter, r *http.Request) {
	act, err := h.service.GetAct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, act)
}

// Activate handles POST /v1/acts/{id}/activate
func (h *ActsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	act, err := h.service.ActivateAct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, act)
}

type CreateSceneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateScene handles POST /v1/acts/{id}/scenes
func (h *ActsHandler) CreateScene(w http.ResponseWriter, r *http.Request) {
	var req CreateSceneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	scene, err := h.service.CreateScene(r.Context(), r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, scene)
}

// ListScenes handles GET /v1/acts/{id}/scenes
func (h *ActsHandler) ListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := h.service.ListScenes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, scenes)
}
