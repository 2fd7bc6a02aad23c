package form

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/concierge/plugin/ai/aitime"
	"github.com/quillhq/concierge/store"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(appointments store.AppointmentStore, extractor aitime.ExtractorService) *Engine {
	e := NewEngine(appointments, extractor)
	e.now = func() time.Time { return testNow }
	return e
}

func TestEngine_Start(t *testing.T) {
	e := newTestEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{})

	state, prompt := e.Start()
	assert.Equal(t, StageAskName, state.Stage)
	assert.Empty(t, state.Collected)
	assert.Equal(t, promptFor(FieldName), prompt)
}

func TestEngine_HappyPath(t *testing.T) {
	appointments := store.NewMockAppointmentStore()
	extractor := &aitime.MockExtractor{Result: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)}
	e := newTestEngine(appointments, extractor)
	ctx := context.Background()

	state, _ := e.Start()

	r := e.Advance(ctx, "sess-1", state, "John Smith")
	assert.Equal(t, StageAskPhone, state.Stage)
	assert.Contains(t, r.Reply, promptFor(FieldPhone))

	r = e.Advance(ctx, "sess-1", state, "555-1234")
	assert.Equal(t, StageAskEmail, state.Stage)
	assert.Contains(t, r.Reply, promptFor(FieldEmail))

	r = e.Advance(ctx, "sess-1", state, "john@example.com")
	assert.Equal(t, StageAskDatetime, state.Stage)
	assert.Contains(t, r.Reply, promptFor(FieldDatetime))

	r = e.Advance(ctx, "sess-1", state, "next Monday 10am")
	assert.Equal(t, StageCompleted, state.Stage)
	assert.True(t, r.Done)
	require.NotEmpty(t, r.ConfirmationID)
	assert.Contains(t, r.Reply, r.ConfirmationID)

	saved, err := appointments.GetByConfirmationID(ctx, r.ConfirmationID)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", saved.SessionID)
	assert.Equal(t, "John Smith", saved.Name)
	assert.Equal(t, "555-1234", saved.Phone)
	assert.Equal(t, "john@example.com", saved.Email)
	assert.True(t, saved.PreferredDatetime.Equal(extractor.Result))
}

func TestEngine_CancellationClearsCollected(t *testing.T) {
	e := newTestEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{})
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	require.Equal(t, StageAskPhone, state.Stage)

	r := e.Advance(ctx, "sess-1", state, "cancel")
	assert.Equal(t, StageCancelled, state.Stage)
	assert.True(t, r.Done)
	assert.Empty(t, state.Collected)
}

func TestEngine_CancellationBeatsValidation(t *testing.T) {
	// "never mind" would fail phone validation; cancellation must win.
	e := newTestEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{})
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")

	r := e.Advance(ctx, "sess-1", state, "never mind")
	assert.Equal(t, StageCancelled, state.Stage)
	assert.True(t, r.Done)
	assert.Zero(t, state.Attempts[FieldPhone], "cancellation must not count as a failed attempt")
}

func TestEngine_RetryCeiling(t *testing.T) {
	e := newTestEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{})
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")

	r := e.Advance(ctx, "sess-1", state, "not a number")
	assert.Equal(t, StageAskPhone, state.Stage)
	assert.False(t, r.Done)
	assert.Equal(t, 1, state.Attempts[FieldPhone])

	r = e.Advance(ctx, "sess-1", state, "still nope")
	assert.Equal(t, StageAskPhone, state.Stage)
	assert.Equal(t, 2, state.Attempts[FieldPhone])

	r = e.Advance(ctx, "sess-1", state, "third strike")
	assert.Equal(t, StageCancelled, state.Stage)
	assert.True(t, r.Done)
	assert.Equal(t, giveUpReply, r.Reply)
}

func TestEngine_AttemptsResetOnSuccess(t *testing.T) {
	e := newTestEngine(store.NewMockAppointmentStore(), &aitime.MockExtractor{})
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")

	e.Advance(ctx, "sess-1", state, "nope")
	e.Advance(ctx, "sess-1", state, "still nope")
	require.Equal(t, 2, state.Attempts[FieldPhone])

	e.Advance(ctx, "sess-1", state, "415 555 0123")
	assert.Equal(t, StageAskEmail, state.Stage)
	assert.Zero(t, state.Attempts[FieldPhone])
}

func TestEngine_RejectsPastDatetime(t *testing.T) {
	extractor := &aitime.MockExtractor{Result: testNow.Add(-time.Hour)}
	e := newTestEngine(store.NewMockAppointmentStore(), extractor)
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	e.Advance(ctx, "sess-1", state, "4155550123")
	e.Advance(ctx, "sess-1", state, "john@example.com")

	r := e.Advance(ctx, "sess-1", state, "yesterday at 9am")
	assert.Equal(t, StageAskDatetime, state.Stage)
	assert.Contains(t, r.Reply, pastDatetimeHint)
	assert.Equal(t, 1, state.Attempts[FieldDatetime])
}

func TestEngine_AmbiguousDatetimeIsValidationFailure(t *testing.T) {
	extractor := &aitime.MockExtractor{Err: aitime.ErrAmbiguous}
	e := newTestEngine(store.NewMockAppointmentStore(), extractor)
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	e.Advance(ctx, "sess-1", state, "4155550123")
	e.Advance(ctx, "sess-1", state, "john@example.com")

	r := e.Advance(ctx, "sess-1", state, "whenever works")
	assert.Equal(t, StageAskDatetime, state.Stage)
	assert.Contains(t, r.Reply, datetimeHint)
}

func TestEngine_PersistenceRetry(t *testing.T) {
	appointments := store.NewMockAppointmentStore()
	appointments.FailFirst = 1
	extractor := &aitime.MockExtractor{Result: testNow.Add(24 * time.Hour)}
	e := newTestEngine(appointments, extractor)
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	e.Advance(ctx, "sess-1", state, "4155550123")
	e.Advance(ctx, "sess-1", state, "john@example.com")

	r := e.Advance(ctx, "sess-1", state, "tomorrow at 10am")
	assert.Equal(t, StagePendingSave, state.Stage)
	assert.False(t, r.Done)
	assert.Equal(t, saveRetryReply, r.Reply)
	require.NotNil(t, state.Pending, "collected data must be retained")

	r = e.Advance(ctx, "sess-1", state, "ok try again")
	assert.Equal(t, StageCompleted, state.Stage)
	assert.True(t, r.Done)
	assert.NotEmpty(t, r.ConfirmationID)
}

func TestEngine_PersistenceHardFailureRetainsRecord(t *testing.T) {
	appointments := store.NewMockAppointmentStore()
	appointments.FailFirst = 10
	extractor := &aitime.MockExtractor{Result: testNow.Add(24 * time.Hour)}
	e := newTestEngine(appointments, extractor)
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	e.Advance(ctx, "sess-1", state, "4155550123")
	e.Advance(ctx, "sess-1", state, "john@example.com")

	e.Advance(ctx, "sess-1", state, "tomorrow at 10am")
	e.Advance(ctx, "sess-1", state, "retry")
	r := e.Advance(ctx, "sess-1", state, "retry")

	assert.Equal(t, StagePendingSave, state.Stage)
	assert.Equal(t, saveFailedReply, r.Reply)
	assert.NotNil(t, state.Pending, "record must not be dropped after exhausting retries")
	assert.Equal(t, 3, state.SaveAttempts)
}

func TestEngine_CancellationDuringPendingSave(t *testing.T) {
	appointments := store.NewMockAppointmentStore()
	appointments.FailFirst = 1
	extractor := &aitime.MockExtractor{Result: testNow.Add(24 * time.Hour)}
	e := newTestEngine(appointments, extractor)
	ctx := context.Background()

	state, _ := e.Start()
	e.Advance(ctx, "sess-1", state, "John Smith")
	e.Advance(ctx, "sess-1", state, "4155550123")
	e.Advance(ctx, "sess-1", state, "john@example.com")
	e.Advance(ctx, "sess-1", state, "tomorrow at 10am")
	require.Equal(t, StagePendingSave, state.Stage)

	r := e.Advance(ctx, "sess-1", state, "cancel")
	assert.Equal(t, StageCancelled, state.Stage)
	assert.True(t, r.Done)
	assert.Nil(t, state.Pending)
}
