package intent

import (
	"context"

	"github.com/quillhq/concierge/plugin/ai/session"
)

// MockClassifier returns a fixed label for tests.
type MockClassifier struct {
	Label Label
	calls int
}

var _ Classifier = (*MockClassifier)(nil)

func (m *MockClassifier) Classify(_ context.Context, _ string, _ []session.Turn) Label {
	m.calls++
	return m.Label
}

// Calls returns how many times Classify was invoked.
func (m *MockClassifier) Calls() int {
	return m.calls
}
