// Package timeout defines centralized timeout constants for collaborator calls.
package timeout

import "time"

// Collaborator timeout constants. A collaborator call that exceeds its
// timeout resolves to the owning component's soft-failure behavior, never
// to an indefinitely hung turn.
const (
	// ClassifyTimeout is the timeout for LLM intent classification.
	ClassifyTimeout = 10 * time.Second

	// RetrieveTimeout is the timeout for a retrieval search.
	RetrieveTimeout = 15 * time.Second

	// GenerateTimeout is the timeout for answer generation.
	GenerateTimeout = 60 * time.Second

	// ExtractTimeout is the timeout for date/time extraction.
	ExtractTimeout = 5 * time.Second

	// PersistTimeout is the timeout for saving an appointment record.
	PersistTimeout = 10 * time.Second

	// MaxFieldAttempts is the maximum number of consecutive failed attempts
	// on one form field before the form gives up.
	MaxFieldAttempts = 3

	// MaxSaveAttempts is the maximum number of persistence retries for a
	// completed form before the failure is surfaced as hard.
	MaxSaveAttempts = 3

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
