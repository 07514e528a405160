package models

import "testing"

func TestAnalyticsApply(t *testing.T) {
	a := AnalyticsSnapshot{TotalCampaigns: 10, PendingApprovals: 3, ActiveCampaigns: 5, TotalUsers: 7}

	a.Apply(AnalyticsDelta{PendingApprovals: -1, ActiveCampaigns: 1})

	if a.PendingApprovals != 2 || a.ActiveCampaigns != 6 {
		t.Errorf("after approve delta got pending=%d active=%d, want 2 and 6", a.PendingApprovals, a.ActiveCampaigns)
	}
	if a.TotalCampaigns != 10 || a.TotalUsers != 7 {
		t.Errorf("untouched counters changed: %+v", a)
	}
}

func TestAnalyticsApplyNeverNegative(t *testing.T) {
	a := AnalyticsSnapshot{}
	a.Apply(AnalyticsDelta{TotalCampaigns: -1, PendingApprovals: -1, ActiveCampaigns: -1})

	if a.TotalCampaigns != 0 || a.PendingApprovals != 0 || a.ActiveCampaigns != 0 {
		t.Errorf("counters went negative: %+v", a)
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range []string{RoleUser, RoleCreator, RoleAdmin} {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false, want true", r)
		}
	}
	if IsValidRole("superuser") {
		t.Error(`IsValidRole("superuser") = true, want false`)
	}
}
