package aitime

import (
	"context"
	"time"
)

// Service implements ExtractorService with rule-based parsing.
type Service struct {
	defaultTimezone *time.Location
}

// NewService creates a new extractor. An unknown timezone name falls back
// to the host's local zone.
func NewService(defaultTimezone string) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		defaultTimezone: loc,
	}
}

// Extract resolves text to a concrete timestamp relative to now.
func (s *Service) Extract(_ context.Context, text string, now time.Time) (time.Time, error) {
	parser := &Parser{
		timezone: s.defaultTimezone,
		now:      func() time.Time { return now },
	}
	return parser.Parse(text)
}

// Ensure Service implements ExtractorService
var _ ExtractorService = (*Service)(nil)
