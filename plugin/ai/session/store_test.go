package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithSession_CreatesOnFirstUse(t *testing.T) {
	s := NewStore()

	id, err := s.WithSession(context.Background(), "", func(sess *Session) error {
		sess.Append(SpeakerUser, "hello")
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())

	snap, ok := s.Peek(id)
	require.True(t, ok)
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, SpeakerUser, snap.Turns[0].Speaker)
	assert.Equal(t, "hello", snap.Turns[0].Text)
}

func TestStore_WithSession_ReusesExisting(t *testing.T) {
	s := NewStore()

	_, err := s.WithSession(context.Background(), "sess-1", func(sess *Session) error {
		sess.Append(SpeakerUser, "first")
		return nil
	})
	require.NoError(t, err)

	id, err := s.WithSession(context.Background(), "sess-1", func(sess *Session) error {
		sess.Append(SpeakerUser, "second")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
	assert.Equal(t, 1, s.Len())

	snap, _ := s.Peek("sess-1")
	require.Len(t, snap.Turns, 2)
	assert.Equal(t, "first", snap.Turns[0].Text)
	assert.Equal(t, "second", snap.Turns[1].Text)
}

func TestStore_WithSession_SerializesSameSession(t *testing.T) {
	s := NewStore()
	const workers = 16
	const turnsEach = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < turnsEach; j++ {
				_, err := s.WithSession(context.Background(), "shared", func(sess *Session) error {
					n := len(sess.Turns)
					sess.Append(SpeakerUser, fmt.Sprintf("w%d-t%d", i, j))
					// len must grow by exactly one under the lock.
					if len(sess.Turns) != n+1 {
						return fmt.Errorf("lost update: %d -> %d", n, len(sess.Turns))
					}
					return nil
				})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	snap, ok := s.Peek("shared")
	require.True(t, ok)
	assert.Len(t, snap.Turns, workers*turnsEach)
}

func TestStore_WithSession_ContextCancelled(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.WithSession(ctx, "sess-1", func(*Session) error {
		t.Fatal("fn must not run with a cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Evict(t *testing.T) {
	s := NewStore()
	_, err := s.WithSession(context.Background(), "sess-1", func(*Session) error { return nil })
	require.NoError(t, err)

	assert.True(t, s.Evict("sess-1"))
	assert.False(t, s.Evict("sess-1"))
	assert.Equal(t, 0, s.Len())

	_, ok := s.Peek("sess-1")
	assert.False(t, ok)
}

func TestStore_WithSession_RecreatesAfterEvict(t *testing.T) {
	s := NewStore()
	_, err := s.WithSession(context.Background(), "sess-1", func(sess *Session) error {
		sess.Append(SpeakerUser, "before eviction")
		return nil
	})
	require.NoError(t, err)

	s.Evict("sess-1")

	_, err = s.WithSession(context.Background(), "sess-1", func(sess *Session) error {
		assert.Empty(t, sess.Turns, "evicted history must not survive")
		return nil
	})
	require.NoError(t, err)
}

func TestStore_CleanupIdle(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	_, err := s.WithSession(context.Background(), "stale", func(*Session) error { return nil })
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	_, err = s.WithSession(context.Background(), "fresh", func(*Session) error { return nil })
	require.NoError(t, err)

	now = now.Add(25 * time.Minute)
	evicted := s.CleanupIdle(30 * time.Minute)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Peek("stale")
	assert.False(t, ok)
	_, ok = s.Peek("fresh")
	assert.True(t, ok)
}

// Exercises turns racing against the cleanup loop; run under -race this
// catches any unlocked LastActiveAt access.
func TestStore_CleanupIdle_ConcurrentWithTurns(t *testing.T) {
	s := NewStore()
	const workers = 8
	const turnsEach = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", i)
			for j := 0; j < turnsEach; j++ {
				_, err := s.WithSession(context.Background(), id, func(sess *Session) error {
					sess.Append(SpeakerUser, "ping")
					return nil
				})
				assert.NoError(t, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.CleanupIdle(time.Hour)
		}
	}()

	wg.Wait()
	<-done

	// Nothing was idle for an hour, so every session survives.
	assert.Equal(t, workers, s.Len())
}

func TestSession_Recent(t *testing.T) {
	sess := &Session{ID: "sess-1"}
	for i := 0; i < 5; i++ {
		sess.Append(SpeakerUser, fmt.Sprintf("turn %d", i))
	}

	recent := sess.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "turn 3", recent[0].Text)
	assert.Equal(t, "turn 4", recent[1].Text)

	assert.Len(t, sess.Recent(100), 5)
	assert.Nil(t, sess.Recent(0))
}
