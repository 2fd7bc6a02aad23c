// Package session provides the per-session conversational state store.
package session

import (
	"time"

	"github.com/quillhq/concierge/plugin/ai/form"
)

// Speaker tags who produced a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message exchange appended to a session's history.
// Immutable once appended; insertion order is chronological.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the durable conversational context for one user/channel.
// It holds the append-only turn history and at most one active form.
// All mutation happens under the store's per-session lock.
type Session struct {
	ID           string
	Turns        []Turn
	Form         *form.FormState
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Append adds a turn to the history and returns it.
func (s *Session) Append(speaker Speaker, text string) Turn {
	t := Turn{Speaker: speaker, Text: text, CreatedAt: time.Now()}
	s.Turns = append(s.Turns, t)
	return t
}

// Recent returns a copy of the last n turns, oldest first.
func (s *Session) Recent(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if n > len(s.Turns) {
		n = len(s.Turns)
	}
	out := make([]Turn, n)
	copy(out, s.Turns[len(s.Turns)-n:])
	return out
}
