package aitime

import (
	"context"
	"time"
)

// MockExtractor is a scripted ExtractorService for tests.
type MockExtractor struct {
	// Result is returned when Err is nil.
	Result time.Time
	Err    error

	calls int
}

var _ ExtractorService = (*MockExtractor)(nil)

func (m *MockExtractor) Extract(_ context.Context, _ string, _ time.Time) (time.Time, error) {
	m.calls++
	if m.Err != nil {
		return time.Time{}, m.Err
	}
	return m.Result, nil
}

// Calls returns how many times Extract was invoked.
func (m *MockExtractor) Calls() int {
	return m.calls
}
