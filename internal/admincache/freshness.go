package admincache

import (
	"fmt"
	"time"
)

// State is the freshness of a Store's cached data.
type State string

const (
	StateStale      State = "stale"
	StateFresh      State = "fresh"
	StateRefreshing State = "refreshing"
)

// Valid freshness transitions: from -> []to
var validStateTransitions = map[State][]State{
	StateStale:      {StateRefreshing},
	StateFresh:      {StateRefreshing, StateStale},
	StateRefreshing: {StateFresh, StateStale},
}

func isValidStateTransition(from, to State) bool {
	for _, s := range validStateTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// freshness tracks the last successful fetch against a window. Callers hold the Store lock.
type freshness struct {
	state     State
	lastFetch time.Time
	window    time.Duration
	now       func() time.Time

	// set when the cache is invalidated while a refresh is in flight
	dirty bool
}

func newFreshness(window time.Duration, now func() time.Time) freshness {
	if now == nil {
		now = time.Now
	}
	return freshness{state: StateStale, window: window, now: now}
}

// current resolves window expiry before reporting the state.
func (f *freshness) current() State {
	if f.state == StateFresh && f.now().Sub(f.lastFetch) >= f.window {
		f.state = StateStale
		f.lastFetch = time.Time{}
	}
	return f.state
}

func (f *freshness) transition(to State) error {
	from := f.current()
	if !isValidStateTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, from, to)
	}
	f.state = to
	return nil
}

func (f *freshness) begin() error {
	if err := f.transition(StateRefreshing); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// finish ends a refresh. A refresh with at least one fresh slice lands Fresh
// unless an invalidation arrived while it was running.
func (f *freshness) finish(ok bool) {
	if ok && !f.dirty {
		f.state = StateFresh
		f.lastFetch = f.now()
		return
	}
	f.state = StateStale
	f.lastFetch = time.Time{}
	f.dirty = false
}

func (f *freshness) invalidate() {
	switch f.current() {
	case StateFresh:
		f.state = StateStale
		f.lastFetch = time.Time{}
	case StateRefreshing:
		f.dirty = true
	}
}
