package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	coreerrors "github.com/quillhq/concierge/internal/errors"
	"github.com/quillhq/concierge/plugin/ai/aitime"
	"github.com/quillhq/concierge/plugin/ai/timeout"
	"github.com/quillhq/concierge/store"
)

// cancellationPhrases is the fixed set honored at any non-terminal stage,
// checked before field validation on every turn.
var cancellationPhrases = map[string]struct{}{
	"cancel":     {},
	"never mind": {},
	"nevermind":  {},
	"stop":       {},
	"forget it":  {},
	"quit":       {},
}

// IsCancellation reports whether a message is an exact cancellation phrase.
func IsCancellation(message string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(message))
	cleaned = strings.TrimRight(cleaned, ".!?")
	cleaned = strings.TrimSpace(cleaned)
	_, ok := cancellationPhrases[cleaned]
	return ok
}

// displayLayout renders accepted datetimes back to the user.
const displayLayout = "Monday, January 2, 2006 at 3:04 PM"

// Result is the outcome of one form turn.
type Result struct {
	Reply string
	Stage Stage
	// Done means the form reached a terminal stage and the caller should
	// clear the session's active form reference.
	Done           bool
	ConfirmationID string
}

// Engine drives FormStates one transition per inbound message.
type Engine struct {
	appointments store.AppointmentStore
	extractor    aitime.ExtractorService

	now func() time.Time
}

// NewEngine creates a form engine over the given collaborators.
func NewEngine(appointments store.AppointmentStore, extractor aitime.ExtractorService) *Engine {
	return &Engine{
		appointments: appointments,
		extractor:    extractor,
		now:          time.Now,
	}
}

// Start creates a fresh form and returns it with the opening prompt.
func (e *Engine) Start() (*FormState, string) {
	return NewFormState(), promptFor(FieldName)
}

// Advance consumes one user message and moves the form at most one stage.
// The caller holds the session lock.
func (e *Engine) Advance(ctx context.Context, sessionID string, state *FormState, message string) *Result {
	// Cancellation overrides everything, including the pending-save retry.
	if IsCancellation(message) {
		state.cancel()
		slog.Info("form cancelled by user", "session_id", sessionID)
		return &Result{Reply: cancelledReply, Stage: state.Stage, Done: true}
	}

	if state.Stage == StagePendingSave {
		return e.persist(ctx, sessionID, state)
	}

	field, ok := state.currentField()
	if !ok {
		// Terminal form left attached to the session; treat as a no-op.
		return &Result{Reply: cancelledReply, Stage: state.Stage, Done: true}
	}

	value, hint, valid := e.validateField(ctx, state, field, message)
	if !valid {
		state.Attempts[field]++
		slog.Debug("form field rejected",
			"session_id", sessionID,
			"attempts", state.Attempts[field],
			"error", coreerrors.ValidationFailed(string(field), hint))
		if state.Attempts[field] >= timeout.MaxFieldAttempts {
			state.cancel()
			slog.Warn("form gave up after repeated invalid input",
				"session_id", sessionID,
				"field", field)
			return &Result{Reply: giveUpReply, Stage: state.Stage, Done: true}
		}
		return &Result{Reply: hint + " " + promptFor(field), Stage: state.Stage}
	}

	state.Collected[field] = value
	state.Attempts[field] = 0
	state.advanceStage()

	if state.Stage == StagePendingSave {
		state.Pending = &store.AppointmentRecord{
			SessionID:         sessionID,
			Name:              state.Collected[FieldName],
			Phone:             state.Collected[FieldPhone],
			Email:             state.Collected[FieldEmail],
			PreferredDatetime: state.PreferredAt,
			CreatedAt:         e.now(),
		}
		return e.persist(ctx, sessionID, state)
	}

	next, _ := state.currentField()
	return &Result{Reply: ackFor(field) + " " + promptFor(next), Stage: state.Stage}
}

// validateField normalizes a candidate value for one field.
func (e *Engine) validateField(ctx context.Context, state *FormState, field Field, message string) (value, hint string, ok bool) {
	switch field {
	case FieldName:
		return validateName(message)
	case FieldPhone:
		return validatePhone(message)
	case FieldEmail:
		return validateEmail(message)
	case FieldDatetime:
		ctx, cancel := context.WithTimeout(ctx, timeout.ExtractTimeout)
		defer cancel()

		now := e.now()
		t, err := e.extractor.Extract(ctx, message, now)
		if err != nil {
			// Ambiguous and failed extractions both read as validation
			// failures for this turn.
			slog.Debug("datetime extraction rejected",
				"error", coreerrors.ExtractionFailed("no unambiguous datetime", err))
			return "", datetimeHint, false
		}
		if !t.After(now) {
			return "", pastDatetimeHint, false
		}
		state.PreferredAt = t
		return t.Format(displayLayout), "", true
	default:
		return "", "Sorry, I didn't get that.", false
	}
}

// persist attempts to save the pending record, bounded by MaxSaveAttempts
// worth of user-visible retries. The record is never silently dropped.
func (e *Engine) persist(ctx context.Context, sessionID string, state *FormState) *Result {
	ctx, cancel := context.WithTimeout(ctx, timeout.PersistTimeout)
	defer cancel()

	id, err := e.appointments.Save(ctx, state.Pending)
	if err != nil {
		state.SaveAttempts++
		slog.Error("appointment save failed",
			"session_id", sessionID,
			"save_attempts", state.SaveAttempts,
			"error", err)
		if state.SaveAttempts >= timeout.MaxSaveAttempts {
			return &Result{Reply: saveFailedReply, Stage: state.Stage}
		}
		return &Result{Reply: saveRetryReply, Stage: state.Stage}
	}

	state.Stage = StageCompleted
	slog.Info("appointment booked",
		"session_id", sessionID,
		"confirmation_id", id)

	reply := fmt.Sprintf("You're all set, %s! Your appointment is booked for %s. Your confirmation id is %s.",
		state.Collected[FieldName],
		state.PreferredAt.Format(displayLayout),
		id)
	return &Result{Reply: reply, Stage: state.Stage, Done: true, ConfirmationID: id}
}
