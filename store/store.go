// Package store persists completed appointment requests.
package store

import (
	"context"
	"time"
)

// AppointmentRecord is a fully collected appointment request.
type AppointmentRecord struct {
	SessionID         string    `json:"session_id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	PreferredDatetime time.Time `json:"preferred_datetime"`
	CreatedAt         time.Time `json:"created_at"`
}

// AppointmentStore persists appointment records.
type AppointmentStore interface {
	// Save writes the record and returns its confirmation id.
	Save(ctx context.Context, record *AppointmentRecord) (string, error)
	// GetByConfirmationID fetches a previously saved record.
	GetByConfirmationID(ctx context.Context, confirmationID string) (*AppointmentRecord, error)
	// ListBySession returns all records saved for a session, oldest first.
	ListBySession(ctx context.Context, sessionID string) ([]*AppointmentRecord, error)
	// Close releases the underlying storage.
	Close() error
}
