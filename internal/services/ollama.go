package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/azurepeak/cultivation-engine/pkg/chat"
)

// OllamaService implements LLMService against a locally hosted Ollama
// instance.
type OllamaService struct {
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger

	mu              sync.Mutex
	progress        float64
	progressMessage string
}

var _ LLMService = (*OllamaService)(nil)

// NewOllamaService creates a new Ollama service instance.
func NewOllamaService(baseURL string, modelName string, logger *slog.Logger) *OllamaService {
	return &OllamaService{
		baseURL:   baseURL,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger:          logger,
		progressMessage: "Model not initialized",
	}
}

// ModelProgress reports load progress as a fraction plus a status line.
func (s *OllamaService) ModelProgress() (float64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress, s.progressMessage
}

func (s *OllamaService) setProgress(progress float64, message string) {
	s.mu.Lock()
	s.progress = progress
	s.progressMessage = message
	s.mu.Unlock()
}

// InitModel makes the model available, pulling it from the registry when
// it is not already present. Pull progress is surfaced through
// ModelProgress so callers can render a loading bar.
func (s *OllamaService) InitModel(ctx context.Context) error {
	s.setProgress(0, "Connecting to Ollama...")

	if err := s.waitForOllamaReady(ctx); err != nil {
		s.setProgress(0, "Ollama unreachable")
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelPresent(ctx)
	if err != nil {
		s.setProgress(0, "Failed to check model")
		return fmt.Errorf("failed to check model readiness: %w", err)
	}

	if !ready {
		s.logger.Info("Model not found, pulling it", "model", s.modelName)
		s.setProgress(0, "Downloading model "+s.modelName)
		if err := s.pullModel(ctx); err != nil {
			s.setProgress(0, "Model pull failed")
			return fmt.Errorf("failed to pull model: %w", err)
		}
		s.logger.Info("Model pulled successfully", "model", s.modelName)
	} else {
		s.logger.Info("Model already available", "model", s.modelName)
	}

	s.setProgress(1, "Model ready")
	return nil
}

// Chat generates a completion using the Ollama chat API (non-streaming).
func (s *OllamaService) Chat(ctx context.Context, messages []chat.Message, opts ChatOptions) (*chat.Response, error) {
	reqBody := map[string]interface{}{
		"model":    s.modelName,
		"messages": messages,
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + "/api/chat"
	s.logger.Debug("Making Ollama chat request",
		"url", url,
		"model", s.modelName,
		"message_count", len(messages))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Ollama API returned error",
			"status_code", resp.StatusCode,
			"response_body", responseBody.String())
		return nil, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var ollamaResp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(responseBody.Bytes(), &ollamaResp); err != nil {
		s.logger.Error("Failed to decode Ollama response",
			"error", err,
			"response_body", responseBody.String())
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &chat.Response{Message: ollamaResp.Message.Content}, nil
}

// isModelPresent checks whether the configured model is already loaded.
func (s *OllamaService) isModelPresent(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var tagsResp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, model := range tagsResp.Models {
		if model.Name == s.modelName {
			return true, nil
		}
	}
	return false, nil
}

// pullModel streams a model pull, translating Ollama's completed/total
// byte counters into a load fraction.
func (s *OllamaService) pullModel(ctx context.Context) error {
	jsonBody, err := json.Marshal(map[string]any{"name": s.modelName, "stream": true})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/pull", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulling can take a while; don't reuse the chat client's timeout.
	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line struct {
			Status    string `json:"status"`
			Total     int64  `json:"total"`
			Completed int64  `json:"completed"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Total > 0 {
			// Cap below 1 until the pull stream finishes.
			frac := float64(line.Completed) / float64(line.Total)
			if frac > 0.99 {
				frac = 0.99
			}
			s.setProgress(frac, line.Status)
		} else if line.Status != "" {
			s.setProgress(0, line.Status)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pull stream failed: %w", err)
	}

	return nil
}

// waitForOllamaReady waits for the Ollama service itself with retries.
func (s *OllamaService) waitForOllamaReady(ctx context.Context) error {
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
		if err != nil {
			s.logger.Debug("Failed to create request for readiness check", "error", err, "attempt", i+1)
			time.Sleep(retryDelay)
			continue
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)
			time.Sleep(retryDelay)
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			s.logger.Info("Ollama service is ready")
			return nil
		}

		s.logger.Debug("Ollama returned non-200 status", "status", resp.StatusCode, "attempt", i+1)
		time.Sleep(retryDelay)
	}

	return fmt.Errorf("ollama service did not become ready after %d attempts", maxRetries)
}
