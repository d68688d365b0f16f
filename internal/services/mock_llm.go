package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	GenerateFunc     func(ctx context.Context, prompt string) (string, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls    []string
	GenerateCalls     []string
	IsModelReadyCalls []string

	mu sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:    make([]string, 0),
		GenerateCalls:     make([]string, 0),
		IsModelReadyCalls: make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}

	// Default behavior - success
	return nil
}

// Generate mocks completion generation and records the prompt
func (m *MockLLMAPI) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	// Default behavior - one well-formed interpretation
	return "## Mock Interpretation\nSomething unexpected happens.\n", nil
}

// IsModelReady mocks model readiness check
func (m *MockLLMAPI) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}

	// Default behavior - model is ready
	return true, nil
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateCalls = make([]string, 0)
	m.IsModelReadyCalls = make([]string, 0)
}

// SetGenerateError sets up the mock to return an error on Generate
func (m *MockLLMAPI) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", err
	}
}

// SetGenerateResponse sets up the mock to return a fixed completion
func (m *MockLLMAPI) SetGenerateResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return response, nil
	}
}

// SetGenerateResponses sets up the mock to return completions in order,
// repeating the last one once the sequence is exhausted.
func (m *MockLLMAPI) SetGenerateResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := 0
	m.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		r := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return r, nil
	}
}

// GetGenerateCalls returns a copy of the recorded prompts
func (m *MockLLMAPI) GetGenerateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.GenerateCalls))
	copy(calls, m.GenerateCalls)
	return calls
}
