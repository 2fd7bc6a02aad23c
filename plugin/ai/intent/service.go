package intent

import (
	"context"
	"log/slog"

	"github.com/quillhq/concierge/plugin/ai"
	"github.com/quillhq/concierge/plugin/ai/session"
	"github.com/quillhq/concierge/plugin/ai/timeout"
)

// Service classifies messages with a hybrid approach: fast keyword rules
// first, then the LLM for uncertain cases. A dead LLM degrades the service
// to rules-plus-fallback rather than taking turns down.
type Service struct {
	llm ai.LLMService // nil disables the LLM layer
}

var _ Classifier = (*Service)(nil)

// NewService creates a classifier. llm may be nil, in which case messages
// the rules cannot place resolve to LabelFallback.
func NewService(llm ai.LLMService) *Service {
	return &Service{llm: llm}
}

// Classify maps a message to a Label. It never returns an error: every
// failure path resolves to LabelFallback.
func (s *Service) Classify(ctx context.Context, message string, recent []session.Turn) Label {
	if result := matchByRules(message); result != nil {
		slog.Debug("intent classified by rules",
			"message", truncateForLog(message),
			"intent", result.Label,
			"confidence", result.Confidence)
		return result.Label
	}

	if s.llm == nil {
		return LabelFallback
	}

	result, err := classifyByLLM(ctx, s.llm, message, recent)
	if err != nil {
		slog.Warn("LLM classification failed, defaulting to fallback",
			"error", err,
			"message", truncateForLog(message))
		return LabelFallback
	}

	slog.Debug("intent classified by LLM",
		"message", truncateForLog(message),
		"intent", result.Label,
		"confidence", result.Confidence)

	return result.Label
}

func truncateForLog(s string) string {
	runes := []rune(s)
	if len(runes) <= timeout.MaxTruncateLength {
		return s
	}
	return string(runes[:timeout.MaxTruncateLength]) + "..."
}
