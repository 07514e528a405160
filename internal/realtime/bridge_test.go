package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBridgePublishesCounts(t *testing.T) {
	bus := events.NewMemoryBus()
	var got []events.Event
	require.NoError(t, bus.Subscribe(context.Background(), events.ChannelNotifications, func(e events.Event) {
		got = append(got, e)
	}))

	b := NewBridge(bus, zap.NewNop())
	b.OnCount(NotificationCount{UserID: "admin-1", Count: 4})
	b.OnCount(NotificationCount{Count: 2})

	require.Len(t, got, 2)
	assert.Equal(t, events.EventNotificationCount, got[0].Type)
	assert.Equal(t, "admin-1", got[0].Payload[events.KeyUserID])
	assert.EqualValues(t, 4, got[0].Payload[events.KeyCount])
	assert.NotContains(t, got[1].Payload, events.KeyUserID)
}

func TestBridgeForwardsOtherFrames(t *testing.T) {
	bus := events.NewMemoryBus()
	var got []events.Event
	require.NoError(t, bus.Subscribe(context.Background(), events.ChannelNotifications, func(e events.Event) {
		got = append(got, e)
	}))

	b := NewBridge(bus, zap.NewNop())
	b.OnFrame(Frame{Type: "campaign_created", Data: json.RawMessage(`{"id":"c9"}`)})
	b.OnFrame(Frame{Type: "", Data: json.RawMessage(`{}`)})
	b.OnFrame(Frame{Type: "broken", Data: json.RawMessage(`{`)})

	require.Len(t, got, 1)
	assert.Equal(t, "campaign_created", got[0].Type)
	assert.Equal(t, map[string]any{"id": "c9"}, got[0].Payload["data"])
}
