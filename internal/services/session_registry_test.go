package services

import (
	"context"
	"testing"
	"time"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *SessionRegistry {
	upstream := NewDreamLiftClient("http://127.0.0.1:0", time.Second, nil, zap.NewNop())
	return NewSessionRegistry(upstream, admincache.Options{}, time.Hour, zap.NewNop())
}

func TestSessionReusedPerAdmin(t *testing.T) {
	r := newTestRegistry()

	a := r.Session("a1", "tok-1")
	b := r.Session("a1", "tok-1")
	assert.Same(t, a, b)
	assert.Same(t, a.Store, b.Store)

	other := r.Session("a2", "tok-2")
	assert.NotSame(t, a.Store, other.Store)
	assert.Equal(t, 2, r.Count())
}

func TestSessionPicksUpNewToken(t *testing.T) {
	r := newTestRegistry()

	s := r.Session("a1", "old")
	s.Tokens.Clear()
	r.Session("a1", "new")
	assert.Equal(t, "new", s.Tokens.Token())
}

func TestDrop(t *testing.T) {
	r := newTestRegistry()
	r.Session("a1", "tok")
	r.Drop("a1")
	_, ok := r.Lookup("a1")
	assert.False(t, ok)
}

func TestListenIgnoresUnrelatedEvents(t *testing.T) {
	r := newTestRegistry()
	bus := events.NewMemoryBus()
	ctx := context.Background()
	require.NoError(t, r.Listen(ctx, bus))

	s := r.Session("a1", "tok")
	s.Store.Invalidate()
	assert.Equal(t, admincache.StateStale, s.Store.State())

	// nothing to observe on a stale store except that no panic occurs
	require.NoError(t, bus.Publish(ctx, events.ChannelAdmin, events.Event{Type: "something_else"}))
	require.NoError(t, bus.Publish(ctx, events.ChannelAdmin, events.Event{
		Type:    events.EventUserUpdated,
		Payload: map[string]any{events.KeyActorID: "a2"},
	}))
	assert.Equal(t, 1, r.InvalidateOthers("a2"))
}

func TestInvalidatesOthers(t *testing.T) {
	tests := []struct {
		event string
		want  bool
	}{
		{events.EventCampaignModerated, true},
		{events.EventCampaignUpdated, true},
		{events.EventCampaignDeleted, true},
		{events.EventUserUpdated, true},
		{events.EventCacheInvalidated, false},
		{"something_else", false},
	}
	for _, tt := range tests {
		if got := invalidatesOthers(tt.event); got != tt.want {
			t.Errorf("invalidatesOthers(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
