package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Moderation
		{CampaignStatusPending, CampaignStatusActive, true},
		{CampaignStatusPending, CampaignStatusRejected, true},
		{CampaignStatusActive, CampaignStatusCompleted, true},

		// Resubmission
		{CampaignStatusRejected, CampaignStatusPending, true},

		// Invalid transitions
		{CampaignStatusActive, CampaignStatusPending, false},
		{CampaignStatusActive, CampaignStatusRejected, false},
		{CampaignStatusRejected, CampaignStatusActive, false},
		{CampaignStatusCompleted, CampaignStatusActive, false},
		{CampaignStatusPending, CampaignStatusCompleted, false},
		{"nonexistent", CampaignStatusActive, false},
		{CampaignStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		CampaignStatusPending, CampaignStatusActive,
		CampaignStatusRejected, CampaignStatusCompleted,
	}

	for _, status := range allStatuses {
		if _, ok := ValidCampaignTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidCampaignTransitions map", status)
		}
	}
}

func TestCompletedIsTerminal(t *testing.T) {
	if n := len(ValidCampaignTransitions[CampaignStatusCompleted]); n != 0 {
		t.Errorf("completed should have no transitions, got %d", n)
	}
}

func TestFundedPercent(t *testing.T) {
	tests := []struct {
		name     string
		c        Campaign
		expected float64
	}{
		{"half", Campaign{GoalAmount: 1000, CurrentAmount: 500}, 50},
		{"over goal capped", Campaign{GoalAmount: 100, CurrentAmount: 250}, 100},
		{"zero goal", Campaign{GoalAmount: 0, CurrentAmount: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.FundedPercent(); got != tt.expected {
				t.Errorf("FundedPercent() = %v, want %v", got, tt.expected)
			}
		})
	}
}
