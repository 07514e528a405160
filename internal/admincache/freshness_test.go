package admincache

import (
	"errors"
	"testing"
	"time"
)

func TestIsValidStateTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateStale, StateRefreshing, true},
		{StateFresh, StateRefreshing, true},
		{StateFresh, StateStale, true},
		{StateRefreshing, StateFresh, true},
		{StateRefreshing, StateStale, true},
		{StateStale, StateFresh, false},
		{StateRefreshing, StateRefreshing, false},
		{StateFresh, StateFresh, false},
	}

	for _, tt := range tests {
		got := isValidStateTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("isValidStateTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFreshnessExpires(t *testing.T) {
	clock := newFakeClock()
	f := newFreshness(time.Minute, clock.Now)

	if err := f.begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.finish(true)
	if got := f.current(); got != StateFresh {
		t.Fatalf("current() = %q, want fresh", got)
	}

	clock.Advance(59 * time.Second)
	if got := f.current(); got != StateFresh {
		t.Errorf("current() after 59s = %q, want fresh", got)
	}
	clock.Advance(time.Second)
	if got := f.current(); got != StateStale {
		t.Errorf("current() after 60s = %q, want stale", got)
	}
	if !f.lastFetch.IsZero() {
		t.Errorf("lastFetch = %v, want zero after expiry", f.lastFetch)
	}
}

func TestFreshnessBeginTwiceFails(t *testing.T) {
	f := newFreshness(time.Minute, nil)
	if err := f.begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := f.begin(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("second begin err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestFreshnessInvalidateDuringRefresh(t *testing.T) {
	f := newFreshness(time.Minute, nil)
	_ = f.begin()
	f.invalidate()
	f.finish(true)
	if f.state != StateStale {
		t.Errorf("state = %q, want stale", f.state)
	}
	if f.dirty {
		t.Error("dirty flag survived finish")
	}
}
