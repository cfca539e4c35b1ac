package gomoku

import "time"

// TurnTimeout is how long the player on turn has to move.
const TurnTimeout = 30 * time.Second

// turnTimer is the single pending timeout of a room. A fired callback only
// acts if the generation it captured is still current, so a timer that
// fires after being superseded is ignored.
type turnTimer struct {
	timer      *time.Timer
	generation uint64
}

// schedule replaces any pending timer with one that calls fn(generation)
// after d, and returns the new generation.
func (t *turnTimer) schedule(d time.Duration, fn func(generation uint64)) uint64 {
	t.cancel()

	t.generation++
	gen := t.generation
	t.timer = time.AfterFunc(d, func() {
		fn(gen)
	})

	return gen
}

// cancel stops the pending timer, if any.
func (t *turnTimer) cancel() {
	if t.timer == nil {
		return
	}

	t.timer.Stop()
	t.timer = nil
	t.generation++
}

// current reports whether gen is the live timer.
func (t *turnTimer) current(gen uint64) bool {
	return t.timer != nil && t.generation == gen
}

func (t *turnTimer) pending() bool {
	return t.timer != nil
}
