package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azurepeak/cultivation-engine/internal/config"
	"github.com/azurepeak/cultivation-engine/internal/handlers"
	"github.com/azurepeak/cultivation-engine/internal/logger"
	"github.com/azurepeak/cultivation-engine/internal/middleware"
	"github.com/azurepeak/cultivation-engine/internal/queue"
	"github.com/azurepeak/cultivation-engine/internal/services"
	"github.com/azurepeak/cultivation-engine/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Cultivation Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"ollama_url", cfg.OllamaURL,
		"model_name", cfg.ModelName)

	llmService := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)

	storage := services.NewRedisStorage(cfg.RedisAddr, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := storage.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	inputs := queue.NewInputQueue(storage.Client(), log)

	// Pull the model in the background so the API comes up immediately
	// and /status can report download progress.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := llmService.InitModel(ctx); err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		}
	}()

	gamesHandler := handlers.NewGamesHandler(storage, llmService, inputs, log)
	gamesHandler.AutoSave = cfg.AutoSave
	if cfg.ContentRating == "family" {
		gamesHandler.SceneFilter = textfilter.New().Apply
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(storage, llmService, log))
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", gamesHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: turn processing waits on the model and can
		// legitimately run for minutes on small hardware.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := storage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
