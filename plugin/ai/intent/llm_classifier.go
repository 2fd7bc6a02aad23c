package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	coreerrors "github.com/quillhq/concierge/internal/errors"
	"github.com/quillhq/concierge/plugin/ai"
	"github.com/quillhq/concierge/plugin/ai/session"
	"github.com/quillhq/concierge/plugin/ai/timeout"
)

// minLLMConfidence is the floor below which an LLM classification is
// discarded in favor of fallback.
const minLLMConfidence = 0.7

// maxHistoryTurns is how much recent history the LLM sees for context.
const maxHistoryTurns = 4

const classifierSystemPrompt = `You classify a user message into exactly one intent:

qa: a question seeking information from the knowledge base
appointment: the user wants to book an appointment, be contacted, or schedule something
fallback: greetings, chit-chat, or anything that fits neither

Respond with JSON only: {"intent": "<qa|appointment|fallback>", "confidence": <0-1>, "reasoning": "<one short sentence>"}`

// llmClassification is the wire shape the model is asked to emit.
type llmClassification struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// classifyByLLM asks the LLM layer to label an uncertain message.
func classifyByLLM(ctx context.Context, llm ai.LLMService, message string, recent []session.Turn) (*RuleResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.ClassifyTimeout)
	defer cancel()

	prompt := buildClassifierPrompt(message, recent)
	raw, err := llm.Chat(ctx, []ai.Message{
		ai.SystemPrompt(classifierSystemPrompt),
		ai.UserMessage(prompt),
	})
	if err != nil {
		return nil, coreerrors.ClassificationFailed("classification request failed", err)
	}

	parsed, err := parseClassification(raw)
	if err != nil {
		return nil, coreerrors.ClassificationFailed("classification reply unusable", err)
	}

	label := ParseLabel(strings.ToLower(strings.TrimSpace(parsed.Intent)))
	if parsed.Confidence < minLLMConfidence {
		label = LabelFallback
	}
	return &RuleResult{Label: label, Confidence: parsed.Confidence, Method: "llm"}, nil
}

// buildClassifierPrompt renders the recent turns plus the new message.
func buildClassifierPrompt(message string, recent []session.Turn) string {
	var b strings.Builder
	if n := len(recent); n > 0 {
		if n > maxHistoryTurns {
			recent = recent[n-maxHistoryTurns:]
		}
		b.WriteString("Recent conversation:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Text)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}

// parseClassification decodes the model's JSON reply, tolerating markdown
// code fences some models wrap around JSON.
func parseClassification(raw string) (*llmClassification, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed llmClassification
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("classification JSON unmarshal failed: %w", err)
	}
	return &parsed, nil
}
