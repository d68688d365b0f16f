package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sologm/engine/internal/services"
)

// GamesHandler serves game lifecycle operations. Routes are registered
// by the caller with method and wildcard patterns; each exported method
// is one route.
type GamesHandler struct {
	service *services.NarrativeService
	logger  *slog.Logger
}

func NewGamesHandler(service *services.NarrativeService, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{service: service, logger: logger}
}

type CreateGameRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /v1/games
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	game, err := h.service.CreateGame(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, game)
}

// List handles GET /v1/games
func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListGames(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, games)
}

// Get handles GET /v1/games/{id}
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, game)
}

// Delete handles DELETE /v1/games/{id}
func (h *GamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /v1/games/{id}/activate
func (h *GamesHandler) Activate(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.ActivateGame(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, game)
}

type CreateActRequest struct {
	Title *string `json:"title"`
}

// CreateAct handles POST /v1/games/{id}/acts
func (h *GamesHandler) CreateAct(w http.ResponseWriter, r *http.Request) {
	var req CreateActRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	act, err := h.service.CreateAct(r.Context(), r.PathValue("id"), req.Title)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, act)
}

// ListActs handles GET /v1/games/{id}/acts
func (h *GamesHandler) ListActs(w http.ResponseWriter, r *http.Request) {
	acts, err := h.service.ListActs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, acts)
}
