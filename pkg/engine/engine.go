// Package engine sequences one player turn: parse intent, apply stat
// deltas, regenerate the act when it ends, generate the next scene, and
// advance world time. Each turn runs against its own state snapshot and
// returns a new one; the input state is never mutated.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/azurepeak/cultivation-engine/internal/services"
	"github.com/azurepeak/cultivation-engine/pkg/chat"
	"github.com/azurepeak/cultivation-engine/pkg/extract"
	"github.com/azurepeak/cultivation-engine/pkg/game"
	"github.com/azurepeak/cultivation-engine/pkg/prompts"
)

// Status is the observable turn-processing state. Exactly one turn may
// be active per engine; callers gate new input on StatusIdle.
type Status int32

const (
	StatusIdle Status = iota
	StatusParsing
	StatusGeneratingAct
	StatusGeneratingScene
	StatusSaving
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusParsing:
		return "parsing"
	case StatusGeneratingAct:
		return "generating-act"
	case StatusGeneratingScene:
		return "generating-scene"
	case StatusSaving:
		return "saving"
	default:
		return "unknown"
	}
}

var (
	// ErrTurnInProgress is returned when a turn is submitted while
	// another is still running against the same engine.
	ErrTurnInProgress = errors.New("turn already in progress")

	// ErrModelNotReady is returned while the model is still loading.
	ErrModelNotReady = errors.New("model not ready")
)

// ParseResult is the structured interpretation of a player input
// produced by the parser role.
type ParseResult struct {
	Intent        string           `json:"intent"`
	StatChanges   game.StatChanges `json:"statChanges"`
	ActEnded      bool             `json:"actEnded"`
	NextSceneHint string           `json:"nextSceneHint"`
}

// DefaultParseResult is the deterministic fallback used when the parser
// output contains no recoverable JSON. It guarantees the turn always
// progresses even under total model failure.
func DefaultParseResult(playerInput string) ParseResult {
	energy := -2
	return ParseResult{
		Intent:        playerInput,
		StatChanges:   game.StatChanges{Energy: &energy},
		ActEnded:      false,
		NextSceneHint: "The player attempts to " + playerInput,
	}
}

const (
	turnTemperature = 0.7
	parserMaxTokens = 512
	actMaxTokens    = 256
	sceneMaxTokens  = 512
)

// Option configures an Engine.
type Option func(*Engine)

// WithStatusCallback registers a callback invoked on every status
// transition, so a UI can show progress while a turn runs.
func WithStatusCallback(fn func(Status)) Option {
	return func(e *Engine) { e.onStatus = fn }
}

// WithSceneFilter installs a transform applied to generated scene prose
// before it is committed to state (content-rating filtering).
func WithSceneFilter(fn func(string) string) Option {
	return func(e *Engine) { e.sceneFilter = fn }
}

// WithAutoSave persists the new snapshot after each successful turn,
// when the state carries a save identifier.
func WithAutoSave(st services.Storage) Option {
	return func(e *Engine) { e.autoSave = st }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine runs the turn pipeline against a completion capability.
type Engine struct {
	llm         services.LLMService
	logger      *slog.Logger
	onStatus    func(Status)
	sceneFilter func(string) string
	autoSave    services.Storage
	now         func() time.Time

	busy   atomic.Bool
	status atomic.Int32
}

// New creates a turn engine.
func New(llm services.LLMService, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		llm:    llm,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status reports the engine's current pipeline state.
func (e *Engine) Status() Status {
	return Status(e.status.Load())
}

func (e *Engine) setStatus(s Status) {
	e.status.Store(int32(s))
	if e.onStatus != nil {
		e.onStatus(s)
	}
}

// Ready reports whether the completion capability can accept turns.
func (e *Engine) Ready() bool {
	progress, _ := e.llm.ModelProgress()
	return progress >= 1
}

// ProcessTurn runs one full player turn and returns the new state
// snapshot. The input snapshot is never mutated, so on error the caller
// still holds a consistent pre-turn state and may retry the whole turn.
//
// Malformed model output is not an error: the parse result degrades to
// DefaultParseResult and a partial act candidate is discarded. Only a
// failing completion or persistence call aborts the turn.
func (e *Engine) ProcessTurn(ctx context.Context, gs *game.FullGameState, playerInput string) (*game.FullGameState, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrTurnInProgress
	}
	defer func() {
		e.setStatus(StatusIdle)
		e.busy.Store(false)
	}()

	if !e.Ready() {
		return nil, ErrModelNotReady
	}

	// Step 1: parse player intent into structured effects.
	e.setStatus(StatusParsing)
	parserRaw, err := e.complete(ctx, prompts.ParserPrompt(gs, playerInput), parserMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("parser call failed: %w", err)
	}

	result, ok := extract.JSON[ParseResult](parserRaw)
	if !ok {
		e.logger.Warn("Parser output had no recoverable JSON, using default parse result",
			"input", playerInput)
		result = DefaultParseResult(playerInput)
	}

	// Step 2: sanitize and apply stat deltas on a fresh snapshot.
	next := game.ApplyStatChanges(gs, game.SanitizeStatChanges(result.StatChanges))

	// Step 3: regenerate the act when its central conflict resolved.
	if result.ActEnded {
		e.setStatus(StatusGeneratingAct)
		actRaw, err := e.complete(ctx, prompts.ActPrompt(next), actMaxTokens)
		if err != nil {
			return nil, fmt.Errorf("act generation failed: %w", err)
		}
		if act, ok := extract.JSON[game.Act](actRaw); ok && act.Name != "" && act.Outline != "" {
			next.CurrentAct = act
		} else {
			e.logger.Warn("Act candidate incomplete, keeping current act",
				"act", next.CurrentAct.Name)
		}
	}

	// Step 4: generate the next scene.
	e.setStatus(StatusGeneratingScene)
	sceneRaw, err := e.complete(ctx, prompts.ScenePrompt(next, result.Intent, result.NextSceneHint), sceneMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("scene generation failed: %w", err)
	}

	sceneText := strings.TrimSpace(sceneRaw)
	if e.sceneFilter != nil {
		sceneText = e.sceneFilter(sceneText)
	}
	next.CurrentScene = game.Scene{
		Title:   next.CurrentAct.Name,
		Text:    sceneText,
		Context: result.NextSceneHint,
	}

	// Steps 5-6: record history and advance the calendar.
	next.NarrativeHistory = append(next.NarrativeHistory, game.NarrativeEntry{
		SceneTitle:  next.CurrentScene.Title,
		Text:        next.CurrentScene.Text,
		PlayerInput: playerInput,
		Timestamp:   e.now(),
	})
	next.WorldData.AdvanceDay()

	if e.autoSave != nil && next.GameID != nil {
		e.setStatus(StatusSaving)
		if err := e.autoSave.SaveGameState(ctx, *next.GameID, next); err != nil {
			return nil, fmt.Errorf("auto-save failed: %w", err)
		}
	}

	return next, nil
}

// complete issues one completion call: one system message, one user
// message, temperature 0.7, output bounded for short JSON or prose.
func (e *Engine) complete(ctx context.Context, p prompts.Prompt, maxTokens int) (string, error) {
	resp, err := e.llm.Chat(ctx, []chat.Message{
		{Role: chat.RoleSystem, Content: p.System},
		{Role: chat.RoleUser, Content: p.User},
	}, services.ChatOptions{
		Temperature: turnTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
