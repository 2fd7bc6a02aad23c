package intent

import (
	"strings"
)

// RuleResult is a rule-layer match with its confidence.
type RuleResult struct {
	Label      Label
	Confidence float64
	Method     string // "rule" or "llm" or "fallback"
}

// appointmentKeywords carry strong booking intent. Checked before the QA
// heuristics so "how do I book an appointment?" still routes to the form.
var appointmentKeywords = []string{
	"book appointment",
	"book an appointment",
	"make an appointment",
	"appointment",
	"booking",
	"schedule",
	"call me",
	"contact me",
	"reach out",
	"reserve",
	"set up a meeting",
	"set up a call",
	"email me",
	"phone number",
	"get in touch",
}

// qaKeywords are weaker signals; interrogatives plus a question mark.
var qaKeywords = []string{
	"what", "how", "why", "when", "where", "who", "which",
	"can i", "can you", "do you", "does", "is there", "are there",
	"tell me about", "explain",
}

// matchByRules attempts fast keyword routing.
// Returns nil when no confident match is found and the LLM layer should run.
func matchByRules(message string) *RuleResult {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return &RuleResult{Label: LabelFallback, Confidence: 1.0, Method: "rule"}
	}

	// Appointment wins over QA: a question about booking is still booking.
	for _, kw := range appointmentKeywords {
		if strings.Contains(lower, kw) {
			return &RuleResult{Label: LabelAppointment, Confidence: 0.85, Method: "rule"}
		}
	}

	qaScore := 0
	if strings.Contains(lower, "?") {
		qaScore += 2
	}
	for _, kw := range qaKeywords {
		if strings.HasPrefix(lower, kw+" ") || strings.Contains(lower, " "+kw+" ") {
			qaScore += 2
			break
		}
	}

	if qaScore >= 2 {
		return &RuleResult{Label: LabelQA, Confidence: 0.80, Method: "rule"}
	}

	// No confident match - need LLM.
	return nil
}
