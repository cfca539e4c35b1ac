package gomoku

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return epoch }

// manualClock only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: epoch}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	refuse bool
}

func (r *recorder) Deliver(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refuse {
		return false
	}
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) Types() []string {
	var types []string
	for _, ev := range r.Events() {
		types = append(types, ev.EventType())
	}
	return types
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

func lastOf[T Event](events []Event) (T, bool) {
	var zero T
	for i := len(events) - 1; i >= 0; i-- {
		if ev, ok := events[i].(T); ok {
			return ev, true
		}
	}
	return zero, false
}

var (
	alice = User{UID: "u-alice", DisplayName: "Alice"}
	bob   = User{UID: "u-bob", DisplayName: "Bob"}
	carol = User{UID: "u-carol", DisplayName: "Carol"}
)

// pairedRoom returns a room with alice and bob seated and a recorder
// subscribed to its events.
func pairedRoom(t *testing.T, opts ...Option) (*Registry, *Room, *recorder) {
	t.Helper()

	reg := NewRegistry(append([]Option{WithClock(fixedClock)}, opts...)...)
	t.Cleanup(reg.Close)

	id, err := reg.Create()
	require.NoError(t, err)

	_, err = reg.Join(id, alice)
	require.NoError(t, err)
	_, err = reg.Join(id, bob)
	require.NoError(t, err)

	room, err := reg.Room(id)
	require.NoError(t, err)

	rec := &recorder{}
	room.broadcaster.Subscribe("observer", rec)

	return reg, room, rec
}

// activeRoom is pairedRoom with both players ready.
func activeRoom(t *testing.T, opts ...Option) (*Registry, *Room, *recorder) {
	t.Helper()

	reg, room, rec := pairedRoom(t, opts...)
	require.NoError(t, room.SetReady(alice.UID))
	require.NoError(t, room.SetReady(bob.UID))
	require.Equal(t, StatusActive, room.State().Status)
	rec.Reset()

	return reg, room, rec
}

func generation(r *Room) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.timer.generation
}

// requireInvariants checks the room invariants that must hold between
// operations.
func requireInvariants(t *testing.T, r *Room) {
	t.Helper()

	s := r.State()
	require.LessOrEqual(t, len(s.Players), MaxPlayers)

	if s.CurrentTurn != "" {
		require.Len(t, s.Players, MaxPlayers)
		for _, p := range s.Players {
			require.True(t, p.Ready, "player %s on a live turn must be ready", p.UID)
		}
		require.Equal(t, StatusActive, s.Status)
		require.True(t, s.TimerPending)
	} else {
		require.False(t, s.TimerPending)
		require.True(t, s.TurnStartedAt.IsZero())
	}
}
