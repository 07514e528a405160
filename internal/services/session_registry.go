package services

import (
	"context"
	"sync"
	"time"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// AdminSession is one administrator's cache and upstream credentials.
type AdminSession struct {
	AdminID string
	Tokens  *StaticToken
	Client  *DreamLiftClient
	Store   *admincache.Store
}

// SessionRegistry keeps an AdminSession per admin id. Sessions expire after
// idleTTL without use.
type SessionRegistry struct {
	cache    *cache.Cache
	mu       sync.Mutex
	upstream *DreamLiftClient
	opts     admincache.Options
	idleTTL  time.Duration
	log      *zap.Logger
}

func NewSessionRegistry(upstream *DreamLiftClient, opts admincache.Options, idleTTL time.Duration, log *zap.Logger) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	return &SessionRegistry{
		cache:    cache.New(idleTTL, idleTTL/6+time.Second),
		upstream: upstream,
		opts:     opts,
		idleTTL:  idleTTL,
		log:      log,
	}
}

// Session returns the admin's session, creating it on first use. A token
// different from the stored one replaces it.
func (r *SessionRegistry) Session(adminID, token string) *AdminSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(adminID); found {
		sess := x.(*AdminSession)
		if token != "" && sess.Tokens.Token() != token {
			sess.Tokens.Set(token)
		}
		// sliding expiry
		r.cache.Set(adminID, sess, cache.DefaultExpiration)
		return sess
	}

	tokens := NewStaticToken(token)
	client := r.upstream.WithTokens(tokens)
	sess := &AdminSession{
		AdminID: adminID,
		Tokens:  tokens,
		Client:  client,
		Store:   admincache.NewStore(client, r.opts, r.log.With(zap.String("admin_id", adminID))),
	}
	r.cache.Set(adminID, sess, cache.DefaultExpiration)
	r.log.Debug("admin session created", zap.String("admin_id", adminID))
	return sess
}

func (r *SessionRegistry) Lookup(adminID string) (*AdminSession, bool) {
	if x, found := r.cache.Get(adminID); found {
		return x.(*AdminSession), true
	}
	return nil, false
}

func (r *SessionRegistry) Drop(adminID string) {
	r.cache.Delete(adminID)
}

func (r *SessionRegistry) Count() int {
	return r.cache.ItemCount()
}

// InvalidateOthers marks every session except exceptID stale and returns how
// many were touched.
func (r *SessionRegistry) InvalidateOthers(exceptID string) int {
	n := 0
	for id, item := range r.cache.Items() {
		if id == exceptID {
			continue
		}
		item.Object.(*AdminSession).Store.Invalidate()
		n++
	}
	return n
}

// Listen invalidates other admins' caches whenever an admin mutation is
// announced on the admin channel.
func (r *SessionRegistry) Listen(ctx context.Context, sub events.Subscriber) error {
	return sub.Subscribe(ctx, events.ChannelAdmin, func(e events.Event) {
		if !invalidatesOthers(e.Type) {
			return
		}
		n := r.InvalidateOthers(e.ActorID())
		r.log.Debug("admin caches invalidated",
			zap.String("event", e.Type),
			zap.String("actor_id", e.ActorID()),
			zap.Int("sessions", n),
		)
	})
}

// invalidatesOthers reports whether an admin event changes data other admins
// have cached. A manual cache refresh does not.
func invalidatesOthers(eventType string) bool {
	switch eventType {
	case events.EventCampaignModerated, events.EventCampaignUpdated, events.EventCampaignDeleted,
		events.EventUserUpdated:
		return true
	}
	return false
}
