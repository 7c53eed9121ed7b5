package mock

import (
	"context"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns Response.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Response is the canned completion returned by default.
	Response string

	mu         sync.Mutex
	callCount  int
	lastPrompt string
}

// NewMockGenerator creates a mock generator that answers with a fixed string.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Response: "respuesta simulada"}
}

// Generate records the prompt and returns the injected or canned completion.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastPrompt = prompt
	fn := m.GenerateFunc
	resp := m.Response
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return resp, nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the most recent prompt passed to Generate.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastPrompt = ""
	m.GenerateFunc = nil
}
