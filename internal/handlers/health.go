package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sologm/engine/internal/services"
	"github.com/sologm/engine/internal/storage"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	storage   storage.Storage
	llm       services.LLMService
	modelName string
	logger    *slog.Logger
}

func NewHealthHandler(s storage.Storage, llm services.LLMService, modelName string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   s,
		llm:       llm,
		modelName: modelName,
		logger:    logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if ready, err := h.llm.IsModelReady(ctx, h.modelName); err != nil || !ready {
		if err != nil {
			h.logger.Warn("LLM health check failed", "error", err)
		}
		components["llm"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["llm"] = "healthy"
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "sologm-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, response)
}
