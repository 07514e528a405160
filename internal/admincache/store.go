// Package admincache holds one administrator's view of the DreamLift admin
// dataset: campaigns, users and platform analytics, refreshed as a batch and
// patched locally after mutations.
package admincache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dreamlift/admin-gateway/internal/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultFreshnessWindow = 5 * time.Minute

// Backend is the upstream the store fetches from and mutates through.
type Backend interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetAnalytics(ctx context.Context) (*models.AnalyticsSnapshot, error)

	ApproveCampaign(ctx context.Context, id string) error
	RejectCampaign(ctx context.Context, id, reason string) error
	UpdateCampaign(ctx context.Context, id string, upd models.CampaignUpdate) (*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
	UpdateUserRole(ctx context.Context, id, role string) error
	UpdateUserStatus(ctx context.Context, id string, active bool) error
}

type Options struct {
	FreshnessWindow time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Snapshot is a point-in-time copy of the cached data.
type Snapshot struct {
	Campaigns   []models.Campaign         `json:"campaigns"`
	Pending     []models.Campaign         `json:"pending"`
	Users       []models.User             `json:"users"`
	Analytics   *models.AnalyticsSnapshot `json:"analytics"`
	State       State                     `json:"state"`
	FetchedAt   *time.Time                `json:"fetched_at,omitempty"`
	Unconfirmed []Marker                  `json:"unconfirmed"`
}

type Store struct {
	backend Backend
	log     *zap.Logger

	mu        sync.Mutex
	fresh     freshness
	campaigns []models.Campaign
	users     []models.User
	analytics *models.AnalyticsSnapshot

	inFlight    map[string]struct{}
	unconfirmed map[string]Marker
	// entities mutated while the current refresh was in flight
	overlapped map[string]bool

	refreshes singleflight.Group
}

func NewStore(backend Backend, opts Options, log *zap.Logger) *Store {
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend:     backend,
		log:         log,
		fresh:       newFreshness(opts.FreshnessWindow, opts.Now),
		inFlight:    make(map[string]struct{}),
		unconfirmed: make(map[string]Marker),
		overlapped:  make(map[string]bool),
	}
}

// Load returns the cached snapshot while it is fresh, otherwise refreshes all
// three slices concurrently. force skips the freshness check. Loads issued
// while a refresh is running wait for that refresh instead of starting another.
func (s *Store) Load(ctx context.Context, force bool) (Snapshot, error) {
	s.mu.Lock()
	if !force && s.fresh.current() == StateFresh {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	_, err, _ := s.refreshes.Do("refresh", func() (any, error) {
		if !force && s.State() == StateFresh {
			return nil, nil
		}
		return nil, s.refresh(ctx)
	})
	return s.Snapshot(), err
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.Lock()
	if err := s.fresh.begin(); err != nil {
		s.mu.Unlock()
		return err
	}
	clear(s.overlapped)
	s.mu.Unlock()

	var (
		campaigns []models.Campaign
		users     []models.User
		analytics *models.AnalyticsSnapshot
		errs      = make([]error, 3)
	)

	// Each fetch records its own failure so siblings keep running.
	var g errgroup.Group
	g.Go(func() error {
		res, err := s.backend.ListCampaigns(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("campaigns: %w", err)
			return nil
		}
		campaigns = res
		return nil
	})
	g.Go(func() error {
		res, err := s.backend.ListUsers(ctx)
		if err != nil {
			errs[1] = fmt.Errorf("users: %w", err)
			return nil
		}
		users = res
		return nil
	})
	g.Go(func() error {
		res, err := s.backend.GetAnalytics(ctx)
		if err == nil && res == nil {
			err = errors.New("empty response")
		}
		if err != nil {
			errs[2] = fmt.Errorf("analytics: %w", err)
			return nil
		}
		analytics = res
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	// A slice fetched before an overlapping mutation landed would undo its
	// local patch, so the patched copy is kept until the next refresh.
	dirty := s.fresh.dirty
	keepCampaigns := s.overlapped[entityCampaign]
	keepUsers := s.overlapped[entityUser]
	failed := 0
	if errs[0] == nil {
		if !keepCampaigns {
			s.campaigns = campaigns
		}
		if !dirty {
			s.clearMarkers(entityCampaign)
		}
	} else {
		failed++
	}
	if errs[1] == nil {
		if !keepUsers {
			s.users = users
		}
		if !dirty {
			s.clearMarkers(entityUser)
		}
	} else {
		failed++
	}
	if errs[2] == nil {
		// campaign mutations move the counters
		if !keepCampaigns {
			a := *analytics
			s.analytics = &a
		}
	} else {
		failed++
	}
	clear(s.overlapped)

	combined := multierr.Combine(errs...)
	if failed == len(errs) {
		s.fresh.finish(false)
		s.log.Warn("admin dashboard refresh failed", zap.Error(combined))
		return fmt.Errorf("%w: %w", ErrAllFetchesFailed, combined)
	}
	if failed > 0 {
		s.log.Warn("admin dashboard partially refreshed",
			zap.Int("failed", failed),
			zap.Error(combined),
		)
	}

	s.fresh.finish(true)
	if dirty {
		s.log.Debug("admin dashboard invalidated during refresh, left stale")
	}
	return nil
}

// Invalidate marks the cache stale so the next Load refetches.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh.invalidate()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fresh.current()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Campaigns:   append([]models.Campaign(nil), s.campaigns...),
		Pending:     pendingOf(s.campaigns),
		Users:       append([]models.User(nil), s.users...),
		State:       s.fresh.current(),
		Unconfirmed: s.markersLocked(),
	}
	if s.analytics != nil {
		a := *s.analytics
		snap.Analytics = &a
	}
	if !s.fresh.lastFetch.IsZero() {
		t := s.fresh.lastFetch
		snap.FetchedAt = &t
	}
	return snap
}

func pendingOf(campaigns []models.Campaign) []models.Campaign {
	pending := make([]models.Campaign, 0)
	for _, c := range campaigns {
		if c.Status == models.CampaignStatusPending {
			pending = append(pending, c)
		}
	}
	return pending
}
