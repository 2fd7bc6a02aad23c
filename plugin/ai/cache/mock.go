package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is an unbounded in-memory CacheService for tests.
type MockCacheService struct {
	mu   sync.Mutex
	data map[string][]byte

	Gets int
	Sets int
}

var _ CacheService = (*MockCacheService)(nil)

// NewMockCacheService creates an empty mock cache.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{data: make(map[string][]byte)}
}

func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	v, ok := m.data[key]
	return v, ok
}

func (m *MockCacheService) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.data[key] = value
	return nil
}

func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}
