package admincache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dreamlift/admin-gateway/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeBackend struct {
	mu        sync.Mutex
	campaigns []models.Campaign
	users     []models.User
	analytics *models.AnalyticsSnapshot

	campaignsErr error
	usersErr     error
	analyticsErr error
	mutationErr  error

	// when set, ListCampaigns signals started then blocks until gate closes
	started chan struct{}
	gate    chan struct{}
	// when set, ApproveCampaign blocks until approveGate closes
	approveStarted chan struct{}
	approveGate    chan struct{}

	campaignCalls  atomic.Int32
	userCalls      atomic.Int32
	analyticsCalls atomic.Int32
	mutationCalls  atomic.Int32

	lastReason string
	lastRole   string
}

func seedBackend() *fakeBackend {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &fakeBackend{
		campaigns: []models.Campaign{
			{ID: "c1", Title: "Clean water", Status: models.CampaignStatusPending, GoalAmount: 5000, CreatedAt: created},
			{ID: "c2", Title: "School roof", Status: models.CampaignStatusPending, GoalAmount: 8000, CreatedAt: created},
			{ID: "c3", Title: "Library", Status: models.CampaignStatusPending, GoalAmount: 1200, CreatedAt: created},
			{ID: "c4", Title: "Food bank", Status: models.CampaignStatusActive, GoalAmount: 3000, CurrentAmount: 900, CreatedAt: created},
			{ID: "c5", Title: "Old drive", Status: models.CampaignStatusCompleted, GoalAmount: 100, CurrentAmount: 100, CreatedAt: created},
		},
		users: []models.User{
			{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleUser, IsActive: true},
			{ID: "u2", Name: "Ben", Email: "ben@example.com", Role: models.RoleCreator, IsActive: true},
		},
		analytics: &models.AnalyticsSnapshot{
			TotalCampaigns:   5,
			TotalUsers:       2,
			TotalDonations:   14,
			TotalRevenue:     1000,
			PendingApprovals: 3,
			ActiveCampaigns:  1,
		},
	}
}

func (f *fakeBackend) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	f.campaignCalls.Add(1)
	if f.gate != nil {
		if f.started != nil {
			f.started <- struct{}{}
		}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.campaignsErr != nil {
		return nil, f.campaignsErr
	}
	return append([]models.Campaign(nil), f.campaigns...), nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]models.User, error) {
	f.userCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeBackend) GetAnalytics(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	f.analyticsCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyticsErr != nil {
		return nil, f.analyticsErr
	}
	a := *f.analytics
	return &a, nil
}

func (f *fakeBackend) ApproveCampaign(ctx context.Context, id string) error {
	f.mutationCalls.Add(1)
	if f.approveGate != nil {
		if f.approveStarted != nil {
			f.approveStarted <- struct{}{}
		}
		<-f.approveGate
	}
	return f.mutationErr
}

func (f *fakeBackend) RejectCampaign(ctx context.Context, id, reason string) error {
	f.mutationCalls.Add(1)
	f.mu.Lock()
	f.lastReason = reason
	f.mu.Unlock()
	return f.mutationErr
}

func (f *fakeBackend) UpdateCampaign(ctx context.Context, id string, upd models.CampaignUpdate) (*models.Campaign, error) {
	f.mutationCalls.Add(1)
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campaigns {
		if c.ID != id {
			continue
		}
		if upd.Title != nil {
			c.Title = *upd.Title
		}
		if upd.GoalAmount != nil {
			c.GoalAmount = *upd.GoalAmount
		}
		return &c, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) DeleteCampaign(ctx context.Context, id string) error {
	f.mutationCalls.Add(1)
	return f.mutationErr
}

func (f *fakeBackend) UpdateUserRole(ctx context.Context, id, role string) error {
	f.mutationCalls.Add(1)
	f.mu.Lock()
	f.lastRole = role
	f.mu.Unlock()
	return f.mutationErr
}

func (f *fakeBackend) UpdateUserStatus(ctx context.Context, id string, active bool) error {
	f.mutationCalls.Add(1)
	return f.mutationErr
}

func (f *fakeBackend) fetchCalls() int32 {
	return f.campaignCalls.Load() + f.userCalls.Load() + f.analyticsCalls.Load()
}
