package events

import "context"

// Channels
const (
	ChannelAdmin         = "events:admin"
	ChannelNotifications = "events:notifications"
)

// Event types
const (
	EventCampaignModerated = "campaign_moderated"
	EventCampaignUpdated   = "campaign_updated"
	EventCampaignDeleted   = "campaign_deleted"
	EventUserUpdated       = "user_updated"
	EventCacheInvalidated  = "cache_invalidated"
	EventNotificationCount = "notification_count"
	EventDonationIntent    = "donation_intent_created"
)

// Payload keys shared by publishers and subscribers.
const (
	KeyActorID = "actor_id"
	KeyEntity  = "entity"
	KeyID      = "id"
	KeyAction  = "action"
	KeyUserID  = "user_id"
	KeyCount   = "count"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// ActorID returns the admin that caused the event, if recorded.
func (e Event) ActorID() string {
	s, _ := e.Payload[KeyActorID].(string)
	return s
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
