// Package intent classifies inbound messages into the closed label set
// {qa, appointment, fallback}.
package intent

import (
	"context"

	"github.com/quillhq/concierge/plugin/ai/session"
)

// Label represents the classified purpose of an inbound message.
// The set is closed: the classifier never reports "unknown"; anything
// ambiguous or unmapped resolves to LabelFallback.
type Label string

const (
	LabelQA          Label = "qa"
	LabelAppointment Label = "appointment"
	LabelFallback    Label = "fallback"
)

// Classifier maps a raw message plus short history to a Label.
// Implementations never return an error: a backend failure resolves to
// LabelFallback. Suppressing re-classification while a form is active is
// the turn router's job, not the classifier's.
type Classifier interface {
	Classify(ctx context.Context, message string, recent []session.Turn) Label
}

// ParseLabel decodes free-text classifier output through a strict mapping
// table. Unmapped output resolves to LabelFallback.
func ParseLabel(s string) Label {
	switch Label(s) {
	case LabelQA:
		return LabelQA
	case LabelAppointment:
		return LabelAppointment
	case LabelFallback:
		return LabelFallback
	default:
		return LabelFallback
	}
}
