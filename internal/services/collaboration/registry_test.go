package collaboration

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, userID string) *Session {
	t.Helper()
	return NewSessionConn(userID, nil)
}

// drain returns every message currently queued for the session.
func drain(s *Session) [][]byte {
	var messages [][]byte
	for {
		select {
		case msg := <-s.Send:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}

func TestRegistryJoin(t *testing.T) {
	t.Run("creates the room on first join", func(t *testing.T) {
		registry := NewRegistry()
		s := newTestSession(t, "u1")

		registry.Join("f1", s)

		assert.Equal(t, 1, registry.MemberCount("f1"))
		assert.True(t, registry.IsMember("f1", s.ID))
	})

	t.Run("is idempotent", func(t *testing.T) {
		registry := NewRegistry()
		s := newTestSession(t, "u1")

		registry.Join("f1", s)
		registry.Join("f1", s)

		assert.Equal(t, 1, registry.MemberCount("f1"))
		assert.Equal(t, []string{"f1"}, registry.RoomsOf(s.ID))
	})

	t.Run("tracks multiple rooms per session", func(t *testing.T) {
		registry := NewRegistry()
		s := newTestSession(t, "u1")

		registry.Join("f1", s)
		registry.Join("f2", s)

		assert.ElementsMatch(t, []string{"f1", "f2"}, registry.RoomsOf(s.ID))
	})
}

func TestRegistryLeave(t *testing.T) {
	t.Run("removes empty rooms", func(t *testing.T) {
		registry := NewRegistry()
		s := newTestSession(t, "u1")

		registry.Join("f1", s)
		registry.Leave("f1", s.ID)

		assert.Equal(t, 0, registry.MemberCount("f1"))
		assert.Empty(t, registry.RoomsOf(s.ID))
	})

	t.Run("keeps rooms with remaining members", func(t *testing.T) {
		registry := NewRegistry()
		s1 := newTestSession(t, "u1")
		s2 := newTestSession(t, "u2")

		registry.Join("f1", s1)
		registry.Join("f1", s2)
		registry.Leave("f1", s1.ID)

		assert.Equal(t, 1, registry.MemberCount("f1"))
		assert.True(t, registry.IsMember("f1", s2.ID))
	})

	t.Run("tolerates unknown rooms and members", func(t *testing.T) {
		registry := NewRegistry()

		registry.Leave("missing", "nobody")
		registry.LeaveAll("nobody")
	})
}

func TestRegistryLeaveAll(t *testing.T) {
	registry := NewRegistry()
	s1 := newTestSession(t, "u1")
	s2 := newTestSession(t, "u2")

	registry.Join("f1", s1)
	registry.Join("f2", s1)
	registry.Join("f1", s2)

	registry.LeaveAll(s1.ID)

	assert.Empty(t, registry.RoomsOf(s1.ID))
	assert.Equal(t, 0, registry.MemberCount("f2"))

	// s2 is untouched and a later broadcast simply no longer reaches s1
	assert.Equal(t, 1, registry.MemberCount("f1"))
	registry.Broadcast("f1", "other", []byte(`{"event":"edit"}`))
	assert.Empty(t, drain(s1))
	assert.Len(t, drain(s2), 1)
}

func TestRegistryBroadcast(t *testing.T) {
	t.Run("excludes the sender", func(t *testing.T) {
		registry := NewRegistry()
		s1 := newTestSession(t, "u1")
		s2 := newTestSession(t, "u2")
		s3 := newTestSession(t, "u3")

		registry.Join("f1", s1)
		registry.Join("f1", s2)
		registry.Join("f1", s3)

		registry.Broadcast("f1", s1.ID, []byte("hello"))

		assert.Empty(t, drain(s1))
		require.Len(t, drain(s2), 1)
		require.Len(t, drain(s3), 1)
	})

	t.Run("empty room is a no-op", func(t *testing.T) {
		registry := NewRegistry()

		registry.Broadcast("missing", "nobody", []byte("hello"))
	})

	t.Run("does not deliver across rooms", func(t *testing.T) {
		registry := NewRegistry()
		s1 := newTestSession(t, "u1")
		s2 := newTestSession(t, "u2")

		registry.Join("f1", s1)
		registry.Join("f2", s2)

		registry.Broadcast("f1", "other", []byte("hello"))

		require.Len(t, drain(s1), 1)
		assert.Empty(t, drain(s2))
	})

	t.Run("skips closed sessions", func(t *testing.T) {
		registry := NewRegistry()
		s1 := newTestSession(t, "u1")
		s2 := newTestSession(t, "u2")

		registry.Join("f1", s1)
		registry.Join("f1", s2)
		s2.close()

		registry.Broadcast("f1", "other", []byte("hello"))

		require.Len(t, drain(s1), 1)
		assert.Empty(t, drain(s2))
	})
}

// Membership mutations under concurrent joins and leaves must not lose
// updates or race with broadcast iteration.
func TestRegistryConcurrentMutation(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	sessions := make([]*Session, 32)
	for i := range sessions {
		sessions[i] = newTestSession(t, "u")
	}

	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			registry.Join("f1", s)
			registry.Broadcast("f1", s.ID, []byte("x"))
			registry.LeaveAll(s.ID)
		}(s)
	}
	wg.Wait()

	assert.Equal(t, 0, registry.MemberCount("f1"))
	for _, s := range sessions {
		assert.Empty(t, registry.RoomsOf(s.ID))
	}
}
