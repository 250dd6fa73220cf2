package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/azurepeak/cultivation-engine/pkg/game"
)

type errorResponse struct {
	Error string `json:"error"`
}

type turnRequest struct {
	Input string `json:"input"`
}

type turnQueuedResponse struct {
	Error   string `json:"error"`
	Queued  bool   `json:"queued"`
	Pending int64  `json:"pending"`
}

type statusResponse struct {
	Status        string  `json:"status"`
	ModelProgress float64 `json:"modelProgress"`
	ModelMessage  string  `json:"modelMessage"`
	PendingInputs int64   `json:"pendingInputs"`
}

// errTurnBusy marks a 409 from the turn endpoint. The input was queued
// server-side when Queued is true.
type errTurnBusy struct {
	Queued  bool
	Pending int64
}

func (e errTurnBusy) Error() string {
	if e.Queued {
		return fmt.Sprintf("a turn is already in progress; input queued (%d pending)", e.Pending)
	}
	return "a turn is already in progress"
}

// errModelLoading marks a 503 from the turn endpoint.
type errModelLoading struct {
	Progress float64
	Message  string
}

func (e errModelLoading) Error() string {
	return fmt.Sprintf("model loading: %s (%.0f%%)", e.Message, e.Progress*100)
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	// Degraded still means reachable; the model may just be pulling.
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

func createGame(client *http.Client, baseURL string, playerName string) (*game.FullGameState, error) {
	payload := map[string]string{}
	if playerName != "" {
		payload["playerName"] = playerName
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/games", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp.StatusCode, body, "failed to create game")
	}

	var gs game.FullGameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse game state response: %w", err)
	}
	return &gs, nil
}

func loadGame(client *http.Client, baseURL string, id uuid.UUID) (*game.FullGameState, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to load game")
	}

	var gs game.FullGameState
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse game state response: %w", err)
	}
	return &gs, nil
}

func postTurn(client *http.Client, baseURL string, id uuid.UUID, input string) (*game.FullGameState, error) {
	jsonData, err := json.Marshal(turnRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/games/%s/turn", baseURL, id),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var gs game.FullGameState
		if err := json.Unmarshal(body, &gs); err != nil {
			return nil, fmt.Errorf("failed to parse game state response: %w", err)
		}
		return &gs, nil
	case http.StatusConflict:
		var queued turnQueuedResponse
		if err := json.Unmarshal(body, &queued); err != nil {
			return nil, errTurnBusy{}
		}
		return nil, errTurnBusy{Queued: queued.Queued, Pending: queued.Pending}
	case http.StatusServiceUnavailable:
		var status statusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, errModelLoading{}
		}
		return nil, errModelLoading{Progress: status.ModelProgress, Message: status.ModelMessage}
	default:
		return nil, apiError(resp.StatusCode, body, "turn failed")
	}
}

func getStatus(client *http.Client, baseURL string, id uuid.UUID) (*statusResponse, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s/status", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get status")
	}

	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}
	return &status, nil
}

func apiError(statusCode int, body []byte, context string) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", statusCode, string(body))
	}
	return fmt.Errorf("%s: %s", context, errResp.Error)
}
