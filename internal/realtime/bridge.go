package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dreamlift/admin-gateway/internal/events"
	"go.uber.org/zap"
)

// Bridge republishes real-time frames on the notifications channel so every
// gateway instance can relay them to connected dashboards.
type Bridge struct {
	publisher events.Publisher
	timeout   time.Duration
	log       *zap.Logger
}

func NewBridge(publisher events.Publisher, log *zap.Logger) *Bridge {
	return &Bridge{publisher: publisher, timeout: 5 * time.Second, log: log}
}

// Options returns listener options wired to the bridge.
func (b *Bridge) Options(url string, token func() string) Options {
	return Options{
		URL:     url,
		Token:   token,
		OnCount: b.OnCount,
		OnFrame: b.OnFrame,
	}
}

func (b *Bridge) OnCount(n NotificationCount) {
	payload := map[string]any{events.KeyCount: n.Count}
	if n.UserID != "" {
		payload[events.KeyUserID] = n.UserID
	}
	b.publish(events.Event{Type: events.EventNotificationCount, Payload: payload})
}

// OnFrame forwards any other frame as is, with its data under "data".
func (b *Bridge) OnFrame(f Frame) {
	if f.Type == "" {
		return
	}
	var data any
	if len(f.Data) > 0 {
		if err := json.Unmarshal(f.Data, &data); err != nil {
			b.log.Debug("dropping frame with undecodable data", zap.String("type", f.Type), zap.Error(err))
			return
		}
	}
	b.publish(events.Event{Type: f.Type, Payload: map[string]any{"data": data}})
}

func (b *Bridge) publish(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	if err := b.publisher.Publish(ctx, events.ChannelNotifications, e); err != nil {
		b.log.Warn("failed to publish realtime event", zap.String("type", e.Type), zap.Error(err))
	}
}
