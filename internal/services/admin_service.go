package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/dreamlift/admin-gateway/internal/models"
	"go.uber.org/zap"
)

var (
	ErrReasonRequired  = errors.New("rejection reason is required")
	ErrAuditDisabled   = errors.New("audit trail is not configured")
	ErrInvalidIdentity = errors.New("admin identity is missing")
)

// AuditStore persists the admin audit trail.
type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error)
	ListRecent(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

// Actor identifies the administrator behind a call.
type Actor struct {
	ID    string
	Token string
}

type AdminService struct {
	registry  *SessionRegistry
	audit     AuditStore
	publisher events.Publisher
	log       *zap.Logger
}

// NewAdminService wires the registry to optional audit and event sinks; either may be nil.
func NewAdminService(
	registry *SessionRegistry,
	audit AuditStore,
	publisher events.Publisher,
	log *zap.Logger,
) *AdminService {
	return &AdminService{
		registry:  registry,
		audit:     audit,
		publisher: publisher,
		log:       log,
	}
}

func (s *AdminService) session(a Actor) (*AdminSession, error) {
	if a.ID == "" {
		return nil, ErrInvalidIdentity
	}
	return s.registry.Session(a.ID, a.Token), nil
}

func (s *AdminService) Dashboard(ctx context.Context, a Actor, refresh bool) (admincache.Snapshot, error) {
	sess, err := s.session(a)
	if err != nil {
		return admincache.Snapshot{}, err
	}
	return sess.Store.Load(ctx, refresh)
}

func (s *AdminService) Campaigns(ctx context.Context, a Actor) ([]models.Campaign, error) {
	snap, err := s.Dashboard(ctx, a, false)
	if err != nil {
		return nil, err
	}
	return snap.Campaigns, nil
}

func (s *AdminService) PendingCampaigns(ctx context.Context, a Actor) ([]models.Campaign, error) {
	snap, err := s.Dashboard(ctx, a, false)
	if err != nil {
		return nil, err
	}
	return snap.Pending, nil
}

func (s *AdminService) Users(ctx context.Context, a Actor) ([]models.User, error) {
	snap, err := s.Dashboard(ctx, a, false)
	if err != nil {
		return nil, err
	}
	return snap.Users, nil
}

func (s *AdminService) Analytics(ctx context.Context, a Actor) (*models.AnalyticsSnapshot, error) {
	snap, err := s.Dashboard(ctx, a, false)
	if err != nil {
		return nil, err
	}
	if snap.Analytics == nil {
		return &models.AnalyticsSnapshot{}, nil
	}
	return snap.Analytics, nil
}

func (s *AdminService) ApproveCampaign(ctx context.Context, a Actor, id string) error {
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	if err := sess.Store.ApproveCampaign(ctx, id); err != nil {
		return err
	}
	s.record(ctx, a, models.AuditCampaignApproved, models.AuditEntityCampaign, id, nil)
	s.announce(ctx, a, events.EventCampaignModerated, models.AuditEntityCampaign, id, admincache.ActionApprove)
	return nil
}

func (s *AdminService) RejectCampaign(ctx context.Context, a Actor, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	if err := sess.Store.RejectCampaign(ctx, id, reason); err != nil {
		return err
	}
	s.record(ctx, a, models.AuditCampaignRejected, models.AuditEntityCampaign, id, map[string]any{"reason": reason})
	s.announce(ctx, a, events.EventCampaignModerated, models.AuditEntityCampaign, id, admincache.ActionReject)
	return nil
}

func (s *AdminService) UpdateCampaign(ctx context.Context, a Actor, id string, upd models.CampaignUpdate) (*models.Campaign, error) {
	sess, err := s.session(a)
	if err != nil {
		return nil, err
	}
	c, err := sess.Store.UpdateCampaign(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.record(ctx, a, models.AuditCampaignUpdated, models.AuditEntityCampaign, id, upd)
	s.announce(ctx, a, events.EventCampaignUpdated, models.AuditEntityCampaign, id, admincache.ActionUpdate)
	return c, nil
}

func (s *AdminService) DeleteCampaign(ctx context.Context, a Actor, id string) error {
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	if err := sess.Store.DeleteCampaign(ctx, id); err != nil {
		return err
	}
	s.record(ctx, a, models.AuditCampaignDeleted, models.AuditEntityCampaign, id, nil)
	s.announce(ctx, a, events.EventCampaignDeleted, models.AuditEntityCampaign, id, admincache.ActionDelete)
	return nil
}

func (s *AdminService) ChangeUserRole(ctx context.Context, a Actor, userID, role string) error {
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	if err := sess.Store.ChangeUserRole(ctx, userID, role); err != nil {
		return err
	}
	s.record(ctx, a, models.AuditUserRoleChanged, models.AuditEntityUser, userID, map[string]any{"role": role})
	s.announce(ctx, a, events.EventUserUpdated, models.AuditEntityUser, userID, admincache.ActionRoleChange)
	return nil
}

func (s *AdminService) SetUserActive(ctx context.Context, a Actor, userID string, active bool) error {
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	if err := sess.Store.SetUserActive(ctx, userID, active); err != nil {
		return err
	}
	s.record(ctx, a, models.AuditUserStatusSet, models.AuditEntityUser, userID, map[string]any{"is_active": active})
	s.announce(ctx, a, events.EventUserUpdated, models.AuditEntityUser, userID, admincache.ActionStatusSet)
	return nil
}

// FinancialReport streams the PDF for period into w.
func (s *AdminService) FinancialReport(ctx context.Context, a Actor, period string, w io.Writer) (int64, error) {
	sess, err := s.session(a)
	if err != nil {
		return 0, err
	}
	n, err := sess.Client.DownloadFinancialReport(ctx, period, w)
	if err != nil {
		return n, err
	}
	s.record(ctx, a, models.AuditReportDownloaded, models.AuditEntityReport, period, map[string]any{"bytes": n})
	return n, nil
}

// InvalidateCache marks the actor's cache stale. The event is relayed to
// dashboards only; other admins keep their caches.
func (s *AdminService) InvalidateCache(ctx context.Context, a Actor) error {
	sess, err := s.session(a)
	if err != nil {
		return err
	}
	sess.Store.Invalidate()
	s.announce(ctx, a, events.EventCacheInvalidated, "", "", "")
	return nil
}

func (s *AdminService) AuditTrail(ctx context.Context, entityType, entityID string, limit, offset int) ([]models.AuditLog, error) {
	if s.audit == nil {
		return nil, ErrAuditDisabled
	}
	if entityType != "" && entityID != "" {
		return s.audit.ListByEntity(ctx, entityType, entityID, limit, offset)
	}
	return s.audit.ListRecent(ctx, limit, offset)
}

// record writes an audit row. Failures are logged and never fail the mutation.
func (s *AdminService) record(ctx context.Context, a Actor, action, entityType, entityID string, meta any) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.audit.Log(ctx, models.AuditLog{
		ActorID:    a.ID,
		ActorType:  models.ActorAdmin,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       meta,
	})
	if err != nil {
		s.log.Warn("failed to write audit entry",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}

func (s *AdminService) announce(ctx context.Context, a Actor, eventType, entity, id, action string) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.publisher.Publish(ctx, events.ChannelAdmin, events.Event{
		Type: eventType,
		Payload: map[string]any{
			events.KeyActorID: a.ID,
			events.KeyEntity:  entity,
			events.KeyID:      id,
			events.KeyAction:  action,
		},
	})
	if err != nil {
		s.log.Warn("failed to publish admin event", zap.String("type", eventType), zap.Error(err))
	}
}
