package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/azurepeak/cultivation-engine/internal/services"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// HealthHandler reports storage connectivity and model readiness.
type HealthHandler struct {
	storage services.Storage
	llm     services.LLMService
	logger  *slog.Logger
}

func NewHealthHandler(storage services.Storage, llm services.LLMService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, llm: llm, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Error("Storage health check failed", "error", err)
		resp.Components["storage"] = "unavailable"
		resp.Status = "degraded"
	} else {
		resp.Components["storage"] = "ok"
	}

	if progress, _ := h.llm.ModelProgress(); progress >= 1.0 {
		resp.Components["model"] = "ready"
	} else {
		resp.Components["model"] = "loading"
		resp.Status = "degraded"
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
