package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds all live sessions, keyed by session id. Turns for the same
// session are serialized through a per-session mutex; independent sessions
// proceed fully in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	now func() time.Time
}

type entry struct {
	mu      sync.Mutex
	sess    *Session
	evicted bool
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// WithSession runs fn while holding the session's lock, creating the
// session on first use. An empty id gets a generated one. The (possibly
// generated) session id is returned alongside fn's error.
func (s *Store) WithSession(ctx context.Context, id string, fn func(*Session) error) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	for {
		if err := ctx.Err(); err != nil {
			return id, err
		}

		e := s.getOrCreate(id)
		e.mu.Lock()
		if e.evicted {
			// Lost a race with Evict/CleanupIdle; the next iteration
			// recreates the session.
			e.mu.Unlock()
			continue
		}
		e.sess.LastActiveAt = s.now()
		err := fn(e.sess)
		e.mu.Unlock()
		return id, err
	}
}

// Peek returns a snapshot of the session's turns and whether it exists.
// Intended for inspection; mutation goes through WithSession.
func (s *Store) Peek(id string) (*Session, bool) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted {
		return nil, false
	}
	snapshot := *e.sess
	snapshot.Turns = make([]Turn, len(e.sess.Turns))
	copy(snapshot.Turns, e.sess.Turns)
	return &snapshot, true
}

// Evict removes a session. Returns true if it existed. Blocks until any
// in-flight turn for the session completes.
func (s *Store) Evict(id string) bool {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	e.evicted = true
	e.mu.Unlock()

	s.mu.Lock()
	if cur, ok := s.sessions[id]; ok && cur == e {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	return true
}

// CleanupIdle evicts sessions idle longer than idleTimeout.
// Returns the number of sessions evicted.
func (s *Store) CleanupIdle(idleTimeout time.Duration) int {
	cutoff := s.now().Add(-idleTimeout)

	s.mu.RLock()
	candidates := make(map[string]*entry, len(s.sessions))
	for id, e := range s.sessions {
		candidates[id] = e
	}
	s.mu.RUnlock()

	// LastActiveAt is written under the entry lock in WithSession, so the
	// read has to hold it too. An in-flight turn refreshes the timestamp
	// before this lock is acquired, sparing the session for another cycle.
	var stale []string
	for id, e := range candidates {
		e.mu.Lock()
		idle := !e.evicted && e.sess.LastActiveAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}

	evicted := 0
	for _, id := range stale {
		if s.Evict(id) {
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) getOrCreate(id string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		return e
	}
	now := s.now()
	e = &entry{sess: &Session{ID: id, CreatedAt: now, LastActiveAt: now}}
	s.sessions[id] = e
	return e
}
