package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sologm/engine/internal/services"
)

// ContextHandler reports the resolved active context: the active game,
// its active act, and that act's active scene.
type ContextHandler struct {
	service *services.NarrativeService
	logger  *slog.Logger
}

func NewContextHandler(service *services.NarrativeService, logger *slog.Logger) *ContextHandler {
	return &ContextHandler{service: service, logger: logger}
}

// Get handles GET /v1/context
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, err := h.service.ResolveActiveContext(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ac)
}
