package services

import (
	"context"
	"sync"

	"github.com/azurepeak/cultivation-engine/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing.
type MockLLM struct {
	InitModelFunc     func(ctx context.Context) error
	ChatFunc          func(ctx context.Context, messages []chat.Message, opts ChatOptions) (*chat.Response, error)
	ModelProgressFunc func() (float64, string)

	// Track calls for assertions
	InitModelCalls int
	ChatCalls      []ChatCall

	mu sync.Mutex // protects all fields above
}

// ChatCall records one Chat invocation.
type ChatCall struct {
	Messages []chat.Message
	Opts     ChatOptions
}

var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a new mock LLM service. With no override funcs set,
// the model reports ready and Chat returns an empty response.
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) InitModel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls++
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx)
	}
	return nil
}

func (m *MockLLM) Chat(ctx context.Context, messages []chat.Message, opts ChatOptions) (*chat.Response, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages, Opts: opts})
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, opts)
	}
	return &chat.Response{}, nil
}

func (m *MockLLM) ModelProgress() (float64, string) {
	m.mu.Lock()
	fn := m.ModelProgressFunc
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return 1, "Model ready"
}

// CallCount returns the number of recorded Chat calls.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}
