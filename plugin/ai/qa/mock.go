package qa

import (
	"context"
	"sync"
)

// MockRetriever is a scripted Retriever for tests.
type MockRetriever struct {
	mu sync.Mutex

	Passages []Passage
	Err      error

	calls   int
	Queries []string
}

var _ Retriever = (*MockRetriever)(nil)

func (m *MockRetriever) Search(_ context.Context, query string, topK int) ([]Passage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.Queries = append(m.Queries, query)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Passages) > topK {
		return m.Passages[:topK], nil
	}
	return m.Passages, nil
}

// Calls returns how many times Search was invoked.
func (m *MockRetriever) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
