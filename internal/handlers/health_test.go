package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurepeak/cultivation-engine/internal/services"
)

func TestHealthHandler_OK(t *testing.T) {
	h := NewHealthHandler(services.NewMockStorage(), services.NewMockLLM(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Components["storage"])
	assert.Equal(t, "ready", resp.Components["model"])
}

func TestHealthHandler_ModelLoading(t *testing.T) {
	llm := services.NewMockLLM()
	llm.ModelProgressFunc = func() (float64, string) { return 0.2, "Downloading model" }
	h := NewHealthHandler(services.NewMockStorage(), llm, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "loading", resp.Components["model"])
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := NewHealthHandler(services.NewMockStorage(), services.NewMockLLM(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
