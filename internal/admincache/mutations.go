package admincache

import (
	"context"
	"fmt"
	"sort"

	"github.com/dreamlift/admin-gateway/internal/models"
	"go.uber.org/zap"
)

const (
	entityCampaign = "campaign"
	entityUser     = "user"
)

const (
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionRoleChange = "role_change"
	ActionStatusSet  = "status_set"
)

// Marker records a mutation that was applied locally but has not yet been
// confirmed by an authoritative fetch.
type Marker struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
	Action string `json:"action"`
}

func markerKey(entity, id string) string {
	return entity + ":" + id
}

func (s *Store) ApproveCampaign(ctx context.Context, id string) error {
	if err := s.checkCampaignTransition(id, models.CampaignStatusActive); err != nil {
		return err
	}
	return s.mutate(ctx, entityCampaign, id, ActionApprove,
		func(ctx context.Context) error { return s.backend.ApproveCampaign(ctx, id) },
		func() { s.applyStatus(id, models.CampaignStatusActive, nil) },
	)
}

func (s *Store) RejectCampaign(ctx context.Context, id, reason string) error {
	if err := s.checkCampaignTransition(id, models.CampaignStatusRejected); err != nil {
		return err
	}
	return s.mutate(ctx, entityCampaign, id, ActionReject,
		func(ctx context.Context) error { return s.backend.RejectCampaign(ctx, id, reason) },
		func() { s.applyStatus(id, models.CampaignStatusRejected, &reason) },
	)
}

// UpdateCampaign sends an edit and replaces the cached copy with the one the
// server returns.
func (s *Store) UpdateCampaign(ctx context.Context, id string, upd models.CampaignUpdate) (*models.Campaign, error) {
	var updated *models.Campaign
	err := s.mutate(ctx, entityCampaign, id, ActionUpdate,
		func(ctx context.Context) error {
			c, err := s.backend.UpdateCampaign(ctx, id, upd)
			updated = c
			return err
		},
		func() { s.applyReplace(id, updated) },
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return s.mutate(ctx, entityCampaign, id, ActionDelete,
		func(ctx context.Context) error { return s.backend.DeleteCampaign(ctx, id) },
		func() { s.applyDelete(id) },
	)
}

func (s *Store) ChangeUserRole(ctx context.Context, id, role string) error {
	if !models.IsValidRole(role) {
		return fmt.Errorf("admincache: unknown role %q", role)
	}
	return s.mutate(ctx, entityUser, id, ActionRoleChange,
		func(ctx context.Context) error { return s.backend.UpdateUserRole(ctx, id, role) },
		func() {
			s.patchUser(id, func(u *models.User) { u.Role = role })
		},
	)
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	return s.mutate(ctx, entityUser, id, ActionStatusSet,
		func(ctx context.Context) error { return s.backend.UpdateUserStatus(ctx, id, active) },
		func() {
			s.patchUser(id, func(u *models.User) { u.IsActive = active })
		},
	)
}

// mutate runs call with an in-flight marker held for the entity. On success
// apply patches the cache under the lock and the cache goes stale. On failure
// nothing changes.
func (s *Store) mutate(ctx context.Context, entity, id, action string, call func(context.Context) error, apply func()) error {
	key := markerKey(entity, id)

	s.mu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.mu.Unlock()
		return ErrMutationInFlight
	}
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)

	if err != nil {
		s.log.Warn("admin mutation failed",
			zap.String("entity", entity),
			zap.String("id", id),
			zap.String("action", action),
			zap.Error(err),
		)
		return err
	}

	apply()
	if s.fresh.current() == StateRefreshing {
		s.overlapped[entity] = true
	}
	s.unconfirmed[key] = Marker{Entity: entity, ID: id, Action: action}
	s.fresh.invalidate()
	return nil
}

// checkCampaignTransition rejects a status change the cached copy cannot make.
// Unknown campaigns and no-op changes pass through to the server.
func (s *Store) checkCampaignTransition(id, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCampaign(id)
	if c == nil || c.Status == to {
		return nil
	}
	if !models.IsValidTransition(c.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	return nil
}

func (s *Store) findCampaign(id string) *models.Campaign {
	for i := range s.campaigns {
		if s.campaigns[i].ID == id {
			return &s.campaigns[i]
		}
	}
	return nil
}

func (s *Store) applyStatus(id, status string, reason *string) {
	prev := ""
	if c := s.findCampaign(id); c != nil {
		prev = c.Status
		c.Status = status
		if reason != nil {
			r := *reason
			c.RejectionReason = &r
		}
	}
	if prev == status {
		return
	}

	var d models.AnalyticsDelta
	switch status {
	case models.CampaignStatusActive:
		d.PendingApprovals = -1
		d.ActiveCampaigns = 1
	case models.CampaignStatusRejected:
		d.PendingApprovals = -1
	}
	s.applyDelta(d)
}

func (s *Store) applyReplace(id string, updated *models.Campaign) {
	if updated == nil {
		return
	}
	if c := s.findCampaign(id); c != nil {
		*c = *updated
	}
}

func (s *Store) applyDelete(id string) {
	d := models.AnalyticsDelta{TotalCampaigns: -1}
	for i, c := range s.campaigns {
		if c.ID != id {
			continue
		}
		switch c.Status {
		case models.CampaignStatusPending:
			d.PendingApprovals = -1
		case models.CampaignStatusActive:
			d.ActiveCampaigns = -1
		}
		s.campaigns = append(s.campaigns[:i:i], s.campaigns[i+1:]...)
		break
	}
	s.applyDelta(d)
}

func (s *Store) applyDelta(d models.AnalyticsDelta) {
	if s.analytics == nil {
		return
	}
	s.analytics.Apply(d)
}

func (s *Store) patchUser(id string, patch func(*models.User)) {
	for i := range s.users {
		if s.users[i].ID == id {
			patch(&s.users[i])
			return
		}
	}
}

func (s *Store) clearMarkers(entity string) {
	for k, m := range s.unconfirmed {
		if m.Entity == entity {
			delete(s.unconfirmed, k)
		}
	}
}

func (s *Store) markersLocked() []Marker {
	out := make([]Marker, 0, len(s.unconfirmed))
	for _, m := range s.unconfirmed {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		return out[i].ID < out[j].ID
	})
	return out
}
