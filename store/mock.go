package store

import (
	"context"
	"fmt"
	"sync"
)

// MockAppointmentStore is an in-memory AppointmentStore for tests, with
// failure injection for persistence-retry paths.
type MockAppointmentStore struct {
	mu sync.Mutex

	// FailFirst makes the first n Save calls fail before succeeding.
	FailFirst int
	// Err overrides the injected failure error.
	Err error

	saveCalls int
	records   map[string]*AppointmentRecord
	order     []string
}

var _ AppointmentStore = (*MockAppointmentStore)(nil)

// NewMockAppointmentStore creates an empty mock store.
func NewMockAppointmentStore() *MockAppointmentStore {
	return &MockAppointmentStore{records: make(map[string]*AppointmentRecord)}
}

// Save stores the record in memory, failing the first FailFirst calls.
func (m *MockAppointmentStore) Save(_ context.Context, record *AppointmentRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls++
	if m.saveCalls <= m.FailFirst {
		if m.Err != nil {
			return "", m.Err
		}
		return "", fmt.Errorf("injected save failure %d", m.saveCalls)
	}

	id := newConfirmationID()
	cp := *record
	m.records[id] = &cp
	m.order = append(m.order, id)
	return id, nil
}

// GetByConfirmationID fetches a stored record.
func (m *MockAppointmentStore) GetByConfirmationID(_ context.Context, confirmationID string) (*AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[confirmationID]
	if !ok {
		return nil, fmt.Errorf("appointment not found: %s", confirmationID)
	}
	cp := *record
	return &cp, nil
}

// ListBySession returns stored records for a session in insertion order.
func (m *MockAppointmentStore) ListBySession(_ context.Context, sessionID string) ([]*AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*AppointmentRecord
	for _, id := range m.order {
		if m.records[id].SessionID == sessionID {
			cp := *m.records[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// SaveCalls returns how many times Save was invoked.
func (m *MockAppointmentStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// Close is a no-op.
func (m *MockAppointmentStore) Close() error { return nil }
