// Package form implements the appointment-collection state machine.
package form

import (
	"time"

	"github.com/quillhq/concierge/store"
)

// Field names one collected datum of the appointment form.
type Field string

const (
	FieldName     Field = "name"
	FieldPhone    Field = "phone"
	FieldEmail    Field = "email"
	FieldDatetime Field = "preferred_datetime"
)

// fieldOrder is the strict collection order.
var fieldOrder = []Field{FieldName, FieldPhone, FieldEmail, FieldDatetime}

// Stage is the form's position in the state machine. Stages advance
// linearly; cancelled is a side-entry terminal reachable from any
// non-terminal stage, and pending_save holds a fully collected record
// whose persistence has not yet succeeded.
type Stage string

const (
	StageAskName     Stage = "ask_name"
	StageAskPhone    Stage = "ask_phone"
	StageAskEmail    Stage = "ask_email"
	StageAskDatetime Stage = "ask_datetime"
	StagePendingSave Stage = "pending_save"
	StageCompleted   Stage = "completed"
	StageCancelled   Stage = "cancelled"
)

// stageForField maps a field to the stage that collects it.
var stageForField = map[Field]Stage{
	FieldName:     StageAskName,
	FieldPhone:    StageAskPhone,
	FieldEmail:    StageAskEmail,
	FieldDatetime: StageAskDatetime,
}

// fieldForStage maps a collecting stage back to its field.
var fieldForStage = map[Stage]Field{
	StageAskName:     FieldName,
	StageAskPhone:    FieldPhone,
	StageAskEmail:    FieldEmail,
	StageAskDatetime: FieldDatetime,
}

// FormState is the in-progress state of one appointment collection.
// All mutation happens under the owning session's lock.
type FormState struct {
	Stage     Stage
	Collected map[Field]string
	Attempts  map[Field]int

	// PreferredAt is the parsed datetime backing Collected[FieldDatetime].
	PreferredAt time.Time

	// Pending holds the built record while persistence is retried.
	Pending      *store.AppointmentRecord
	SaveAttempts int

	StartedAt time.Time
}

// NewFormState creates a form positioned at the first stage.
func NewFormState() *FormState {
	return &FormState{
		Stage:     StageAskName,
		Collected: make(map[Field]string),
		Attempts:  make(map[Field]int),
		StartedAt: time.Now(),
	}
}

// Terminal reports whether the form can no longer advance.
func (f *FormState) Terminal() bool {
	return f.Stage == StageCompleted || f.Stage == StageCancelled
}

// currentField returns the field the current stage collects, if any.
func (f *FormState) currentField() (Field, bool) {
	field, ok := fieldForStage[f.Stage]
	return field, ok
}

// advanceStage moves to the stage of the first unfilled field, or to
// pending_save when everything is collected.
func (f *FormState) advanceStage() {
	for _, field := range fieldOrder {
		if f.Collected[field] == "" {
			f.Stage = stageForField[field]
			return
		}
	}
	f.Stage = StagePendingSave
}

// cancel clears collected data and parks the form at the terminal stage.
func (f *FormState) cancel() {
	f.Stage = StageCancelled
	f.Collected = make(map[Field]string)
	f.Attempts = make(map[Field]int)
	f.Pending = nil
	f.PreferredAt = time.Time{}
}
