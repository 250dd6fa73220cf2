package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/azurepeak/cultivation-engine/internal/queue"
	"github.com/azurepeak/cultivation-engine/internal/services"
	"github.com/azurepeak/cultivation-engine/pkg/engine"
	"github.com/azurepeak/cultivation-engine/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateGameRequest optionally overrides the seeded player.
type CreateGameRequest struct {
	PlayerName       string `json:"playerName,omitempty"`
	WorldDescription string `json:"worldDescription,omitempty"`
}

// TurnRequest is one player input. An empty input consumes the oldest
// queued input instead.
type TurnRequest struct {
	Input string `json:"input"`
}

// TurnQueuedResponse is returned when a turn is already in flight and
// the input was parked on the pending queue.
type TurnQueuedResponse struct {
	Error   string `json:"error"`
	Queued  bool   `json:"queued"`
	Pending int64  `json:"pending"`
}

// StatusResponse reports engine and model state for UI progress.
type StatusResponse struct {
	Status        string  `json:"status"`
	ModelProgress float64 `json:"modelProgress"`
	ModelMessage  string  `json:"modelMessage"`
	PendingInputs int64   `json:"pendingInputs"`
}

// GamesHandler serves game persistence and turn processing.
//
// Routes:
//
//	POST   /v1/games             - create a new game
//	GET    /v1/games/{id}        - load a game by ID
//	PUT    /v1/games/{id}        - save a game state wholesale
//	DELETE /v1/games/{id}        - delete a game
//	POST   /v1/games/{id}/turn   - process one player turn
//	GET    /v1/games/{id}/status - engine status and model progress
type GamesHandler struct {
	storage services.Storage
	llm     services.LLMService
	inputs  *queue.InputQueue // may be nil; mid-turn inputs are then rejected outright
	logger  *slog.Logger

	// SceneFilter, when set, is applied to generated prose.
	SceneFilter func(string) string
	// AutoSave persists the state after each successful turn.
	AutoSave bool

	mu      sync.Mutex
	engines map[uuid.UUID]*engine.Engine
}

func NewGamesHandler(storage services.Storage, llm services.LLMService, inputs *queue.InputQueue, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		storage: storage,
		llm:     llm,
		inputs:  inputs,
		logger:  logger,
		engines: make(map[uuid.UUID]*engine.Engine),
	}
}

// engineFor returns the per-game engine, creating it on first use. One
// engine per game enforces the single-active-turn gate per session.
func (h *GamesHandler) engineFor(id uuid.UUID) *engine.Engine {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.engines[id]; ok {
		return e
	}

	opts := make([]engine.Option, 0, 2)
	if h.AutoSave {
		opts = append(opts, engine.WithAutoSave(h.storage))
	}
	if h.SceneFilter != nil {
		opts = append(opts, engine.WithSceneFilter(h.SceneFilter))
	}
	e := engine.New(h.llm, h.logger, opts...)
	h.engines[id] = e
	return e
}

func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	segments := []string{}
	if path != "" {
		segments = strings.Split(path, "/")
	}

	if len(segments) == 0 {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, err := uuid.Parse(segments[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", segments[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case len(segments) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleLoad(w, r, id)
		case http.MethodPut:
			h.handleSave(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case len(segments) == 2 && segments[1] == "turn" && r.Method == http.MethodPost:
		h.handleTurn(w, r, id)
	case len(segments) == 2 && segments[1] == "status" && r.Method == http.MethodGet:
		h.handleStatus(w, r, id)
	default:
		h.writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	// An empty or absent body is fine; all fields are optional.
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "Invalid create request")
		return
	}

	gs := game.NewGameState()
	if req.PlayerName != "" {
		gs.Player().Name = req.PlayerName
	}
	if req.WorldDescription != "" {
		gs.WorldDescription = req.WorldDescription
	}

	id, err := h.storage.CreateGameState(r.Context(), gs)
	if err != nil {
		h.logger.Error("Failed to create game state", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	h.logger.Info("Game created", "game_id", id.String(), "player", gs.Player().Name)
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, gs)
}

func (h *GamesHandler) handleLoad(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game state", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	h.writeJSON(w, gs)
}

func (h *GamesHandler) handleSave(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var gs game.FullGameState
	if err := json.NewDecoder(r.Body).Decode(&gs); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid game state payload")
		return
	}
	gs.GameID = &id

	if err := h.storage.SaveGameState(r.Context(), id, &gs); err != nil {
		h.logger.Error("Failed to save game state", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save game")
		return
	}
	h.writeJSON(w, &gs)
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete game state", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if h.inputs != nil {
		if err := h.inputs.Clear(r.Context(), id); err != nil {
			h.logger.Warn("Failed to clear pending inputs", "game_id", id.String(), "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) handleTurn(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid turn request")
		return
	}

	input := strings.TrimSpace(req.Input)
	fromQueue := false
	if input == "" {
		// An empty input drains the oldest queued one.
		if h.inputs == nil {
			h.writeError(w, http.StatusBadRequest, "Input cannot be empty")
			return
		}
		queued, ok, err := h.inputs.DequeueNext(r.Context(), id)
		if err != nil {
			h.logger.Error("Failed to read pending inputs", "game_id", id.String(), "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to read pending inputs")
			return
		}
		if !ok {
			h.writeError(w, http.StatusBadRequest, "Input cannot be empty and no input is queued")
			return
		}
		input = queued
		fromQueue = true
	}

	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game state", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Game not found")
		return
	}

	eng := h.engineFor(id)
	next, err := eng.ProcessTurn(r.Context(), gs, input)
	switch {
	case errors.Is(err, engine.ErrTurnInProgress):
		h.queueOrReject(w, r, id, input, fromQueue)
		return
	case errors.Is(err, engine.ErrModelNotReady):
		progress, message := h.llm.ModelProgress()
		h.logger.Debug("Turn rejected, model loading", "progress", progress)
		w.WriteHeader(http.StatusServiceUnavailable)
		h.writeJSON(w, StatusResponse{
			Status:        eng.Status().String(),
			ModelProgress: progress,
			ModelMessage:  message,
		})
		return
	case err != nil:
		h.logger.Error("Turn failed", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusBadGateway, "Turn failed: "+err.Error())
		return
	}

	// Without auto-save the new snapshot is persisted here, so a load
	// always observes either the full turn or none of it.
	if !h.AutoSave {
		if err := h.storage.SaveGameState(r.Context(), id, next); err != nil {
			h.logger.Error("Failed to save turn result", "game_id", id.String(), "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to save turn result")
			return
		}
	}

	h.writeJSON(w, next)
}

// queueOrReject parks a mid-turn input on the pending queue when one is
// configured, otherwise rejects it outright. An input that was itself
// drained from the queue goes back to the head so queue order holds.
func (h *GamesHandler) queueOrReject(w http.ResponseWriter, r *http.Request, id uuid.UUID, input string, fromQueue bool) {
	if h.inputs == nil {
		w.WriteHeader(http.StatusConflict)
		h.writeJSON(w, ErrorResponse{Error: "A turn is already in progress"})
		return
	}

	park := h.inputs.Enqueue
	if fromQueue {
		park = h.inputs.Requeue
	}
	if err := park(r.Context(), id, input); err != nil {
		h.logger.Error("Failed to queue input", "game_id", id.String(), "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to queue input")
		return
	}
	pending, err := h.inputs.Len(r.Context(), id)
	if err != nil {
		pending = 0
	}

	w.WriteHeader(http.StatusConflict)
	h.writeJSON(w, TurnQueuedResponse{
		Error:   "A turn is already in progress; input queued",
		Queued:  true,
		Pending: pending,
	})
}

func (h *GamesHandler) handleStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	progress, message := h.llm.ModelProgress()

	var pending int64
	if h.inputs != nil {
		if n, err := h.inputs.Len(r.Context(), id); err == nil {
			pending = n
		}
	}

	h.writeJSON(w, StatusResponse{
		Status:        h.engineFor(id).Status().String(),
		ModelProgress: progress,
		ModelMessage:  message,
		PendingInputs: pending,
	})
}

func (h *GamesHandler) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *GamesHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	h.writeJSON(w, ErrorResponse{Error: message})
}
