package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sologm/engine/internal/config"
	"github.com/sologm/engine/internal/handlers"
	"github.com/sologm/engine/internal/logger"
	"github.com/sologm/engine/internal/middleware"
	"github.com/sologm/engine/internal/services"
	"github.com/sologm/engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Solo GM API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"db_path", cfg.DBPath)

	var llmService services.LLMService
	var modelName string
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel, log)
		modelName = cfg.AnthropicModel
		log.Info("Using Anthropic LLM provider")
	case "ollama":
		llmService = services.NewOllamaService(cfg.OllamaURL, cfg.OllamaModel, log)
		modelName = cfg.OllamaModel
		log.Info("Using Ollama LLM provider")
	case "mock":
		// Offline development and CI
		llmService = services.NewMockLLMAPI()
		log.Info("Using mock LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "ollama", "mock"})
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.DBPath, log)
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage opened successfully")

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, modelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", modelName)
		os.Exit(1)
	}

	narrativeService := services.NewNarrativeService(store, log)
	oracleService := services.NewOracleService(store, llmService, log)
	oracleService.SetMaxRetries(cfg.OracleMaxRetries)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, modelName, log))

	contextHandler := handlers.NewContextHandler(narrativeService, log)
	mux.HandleFunc("GET /v1/context", contextHandler.Get)

	gamesHandler := handlers.NewGamesHandler(narrativeService, log)
	mux.HandleFunc("POST /v1/games", gamesHandler.Create)
	mux.HandleFunc("GET /v1/games", gamesHandler.List)
	mux.HandleFunc("GET /v1/games/{id}", gamesHandler.Get)
	mux.HandleFunc("DELETE /v1/games/{id}", gamesHandler.Delete)
	mux.HandleFunc("POST /v1/games/{id}/activate", gamesHandler.Activate)
	mux.HandleFunc("POST /v1/games/{id}/acts", gamesHandler.CreateAct)
	mux.HandleFunc("GET /v1/games/{id}/acts", gamesHandler.ListActs)

	actsHandler := handlers.NewActsHandler(narrativeService, log)
	mux.HandleFunc("GET /v1/acts/{id}", actsHandler.Get)
	mux.HandleFunc("POST /v1/acts/{id}/activate", actsHandler.Activate)
	mux.HandleFunc("POST /v1/acts/{id}/scenes", actsHandler.CreateScene)
	mux.HandleFunc("GET /v1/acts/{id}/scenes", actsHandler.ListScenes)

	scenesHandler := handlers.NewScenesHandler(narrativeService, log)
	mux.HandleFunc("GET /v1/scenes/{id}", scenesHandler.Get)
	mux.HandleFunc("POST /v1/scenes/{id}/activate", scenesHandler.Activate)
	mux.HandleFunc("POST /v1/scenes/{id}/complete", scenesHandler.Complete)

	eventsHandler := handlers.NewEventsHandler(narrativeService, log)
	mux.HandleFunc("POST /v1/scenes/{id}/events", eventsHandler.AddEvent)
	mux.HandleFunc("GET /v1/scenes/{id}/events", eventsHandler.ListEvents)
	mux.HandleFunc("POST /v1/scenes/{id}/rolls", eventsHandler.RollDice)
	mux.HandleFunc("GET /v1/scenes/{id}/rolls", eventsHandler.ListRolls)

	oracleHandler := handlers.NewOracleHandler(oracleService, log)
	mux.HandleFunc("POST /v1/scenes/{id}/interpretations", oracleHandler.Interpret)
	mux.HandleFunc("POST /v1/scenes/{id}/interpretations/retry", oracleHandler.Retry)
	mux.HandleFunc("GET /v1/scenes/{id}/interpretations/current", oracleHandler.Current)
	mux.HandleFunc("GET /v1/interpretation-sets/{id}", oracleHandler.GetSet)
	mux.HandleFunc("POST /v1/interpretation-sets/{id}/select", oracleHandler.Select)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout left unset; oracle generation can exceed any
		// reasonable fixed budget and handles its own timeouts
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage", "error", err)
	}

	log.Info("Server exited")
}
