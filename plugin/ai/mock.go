package ai

import (
	"context"
	"sync"
)

// MockLLMService is a scripted LLMService for tests.
type MockLLMService struct {
	mu sync.Mutex

	// Responses are returned in order; the last one repeats when exhausted.
	Responses []string
	// Err, when set, is returned by every call.
	Err error

	calls    int
	Requests [][]Message
}

var _ LLMService = (*MockLLMService)(nil)

// Chat returns the next scripted response.
func (m *MockLLMService) Chat(_ context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, messages)
	m.calls++

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := m.calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// Calls returns how many times Chat was invoked.
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
