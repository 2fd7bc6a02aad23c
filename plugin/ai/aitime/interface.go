// Package aitime provides natural language date/time extraction for the
// appointment form.
package aitime

import (
	"context"
	"errors"
	"time"
)

// ErrAmbiguous is returned when no concrete timestamp can be recovered
// from the input. Callers treat it like a validation failure and re-ask.
var ErrAmbiguous = errors.New("ambiguous time expression")

// ExtractorService resolves a free-text time expression to a concrete
// timestamp relative to now.
type ExtractorService interface {
	// Extract parses expressions like "tomorrow at 3pm", "next friday",
	// "2026-09-12 14:00" or "in 2 hours". Returns ErrAmbiguous when the
	// text carries no recoverable timestamp.
	Extract(ctx context.Context, text string, now time.Time) (time.Time, error)
}
