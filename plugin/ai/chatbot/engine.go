// Package chatbot implements the turn router: one entry point that loads
// the session, routes the message, and appends both sides of the exchange.
package chatbot

import (
	"context"
	"log/slog"
	"time"

	coreerrors "github.com/quillhq/concierge/internal/errors"
	"github.com/quillhq/concierge/internal/observability"
	"github.com/quillhq/concierge/plugin/ai/form"
	"github.com/quillhq/concierge/plugin/ai/intent"
	"github.com/quillhq/concierge/plugin/ai/qa"
	"github.com/quillhq/concierge/plugin/ai/session"
)

const (
	fallbackReply = "I can answer questions about our documents, or help you book an appointment. What would you like to do?"

	unavailableReply = "I'm temporarily unable to answer that. Please try again in a moment."
)

// recentTurns is how much trailing history classification and QA see.
const recentTurns = 6

// Reply is the outcome of one processed turn.
type Reply struct {
	SessionID      string      `json:"session_id"`
	Text           string      `json:"text"`
	Intent         string      `json:"intent,omitempty"`
	Stage          string      `json:"stage,omitempty"`
	ConfirmationID string      `json:"confirmation_id,omitempty"`
	Sources        []qa.Source `json:"sources,omitempty"`
}

// Engine routes inbound messages to the form engine or QA orchestrator.
// Safe for concurrent use: per-session serialization is delegated to the
// session store.
type Engine struct {
	sessions   *session.Store
	classifier intent.Classifier
	forms      *form.Engine
	qa         *qa.Orchestrator
}

// NewEngine wires the turn router over its collaborators.
func NewEngine(sessions *session.Store, classifier intent.Classifier, forms *form.Engine, qaSvc *qa.Orchestrator) *Engine {
	return &Engine{
		sessions:   sessions,
		classifier: classifier,
		forms:      forms,
		qa:         qaSvc,
	}
}

// HandleTurn processes one inbound message. An empty sessionID starts a
// new session; the generated id comes back on the Reply.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (*Reply, error) {
	start := time.Now()

	var reply *Reply
	id, err := e.sessions.WithSession(ctx, sessionID, func(sess *session.Session) error {
		sess.Append(session.SpeakerUser, message)
		reply = e.route(ctx, sess, message)
		sess.Append(session.SpeakerAssistant, reply.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reply.SessionID = id
	slog.Info("turn handled",
		observability.LogFieldSessionID, id,
		observability.LogFieldIntent, reply.Intent,
		observability.LogFieldStage, reply.Stage,
		observability.LogFieldMessageLen, len(message),
		observability.LogFieldDuration, time.Since(start).Milliseconds())
	return reply, nil
}

// route picks the behavior for one message. Runs under the session lock.
func (e *Engine) route(ctx context.Context, sess *session.Session, message string) *Reply {
	// An active form owns the conversation; re-classification is
	// suppressed until it reaches a terminal stage.
	if sess.Form != nil && !sess.Form.Terminal() {
		return e.advanceForm(ctx, sess, message)
	}

	label := e.classifier.Classify(ctx, message, sess.Recent(recentTurns))
	switch label {
	case intent.LabelAppointment:
		state, prompt := e.forms.Start()
		sess.Form = state
		return &Reply{Text: prompt, Intent: string(label), Stage: string(state.Stage)}

	case intent.LabelQA:
		return e.answerQuestion(ctx, sess, message)

	default:
		return &Reply{Text: fallbackReply, Intent: string(intent.LabelFallback)}
	}
}

func (e *Engine) advanceForm(ctx context.Context, sess *session.Session, message string) *Reply {
	result := e.forms.Advance(ctx, sess.ID, sess.Form, message)
	if result.Done {
		sess.Form = nil
	}
	return &Reply{
		Text:           result.Reply,
		Intent:         string(intent.LabelAppointment),
		Stage:          string(result.Stage),
		ConfirmationID: result.ConfirmationID,
	}
}

func (e *Engine) answerQuestion(ctx context.Context, sess *session.Session, message string) *Reply {
	answer, err := e.qa.Answer(ctx, message, sess.Recent(recentTurns))
	if err != nil {
		// Degrade to a safe reply; the turn still lands in history.
		slog.Warn("qa degraded",
			observability.LogFieldSessionID, sess.ID,
			observability.LogFieldErrorCode, coreerrors.GetCodeFromError(err, coreerrors.ErrCodeGenerationFailed),
			"error", err)
		return &Reply{Text: unavailableReply, Intent: string(intent.LabelQA)}
	}
	return &Reply{Text: answer.Text, Intent: string(intent.LabelQA), Sources: answer.Sources}
}

// Evict drops a session. Returns true if it existed.
func (e *Engine) Evict(sessionID string) bool {
	return e.sessions.Evict(sessionID)
}

// InvalidateAnswers drops cached QA answers after the document index
// behind the retrieval service changes.
func (e *Engine) InvalidateAnswers(ctx context.Context) error {
	return e.qa.InvalidateCache(ctx)
}
