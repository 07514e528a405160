package models

// AnalyticsSnapshot holds the aggregate counters shown on the admin dashboard.
type AnalyticsSnapshot struct {
	TotalCampaigns   int     `json:"total_campaigns"`
	TotalUsers       int     `json:"total_users"`
	TotalDonations   int     `json:"total_donations"`
	TotalRevenue     float64 `json:"total_revenue"`
	PendingApprovals int     `json:"pending_approvals"`
	ActiveCampaigns  int     `json:"active_campaigns"`
}

// AnalyticsDelta is a fixed counter adjustment applied after a local mutation.
type AnalyticsDelta struct {
	TotalCampaigns   int
	PendingApprovals int
	ActiveCampaigns  int
}

// Apply adds d to the counters. Counters never drop below zero.
func (a *AnalyticsSnapshot) Apply(d AnalyticsDelta) {
	a.TotalCampaigns = clampAdd(a.TotalCampaigns, d.TotalCampaigns)
	a.PendingApprovals = clampAdd(a.PendingApprovals, d.PendingApprovals)
	a.ActiveCampaigns = clampAdd(a.ActiveCampaigns, d.ActiveCampaigns)
}

func clampAdd(v, d int) int {
	v += d
	if v < 0 {
		return 0
	}
	return v
}
