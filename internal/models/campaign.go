package models

import "time"

// Campaign statuses
const (
	CampaignStatusPending   = "pending"
	CampaignStatusActive    = "active"
	CampaignStatusRejected  = "rejected"
	CampaignStatusCompleted = "completed"
)

// Valid moderation transitions: from -> []to
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusPending:   {CampaignStatusActive, CampaignStatusRejected},
	CampaignStatusActive:    {CampaignStatusCompleted},
	CampaignStatusRejected:  {CampaignStatusPending},
	CampaignStatusCompleted: {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidCampaignTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type CampaignCreator struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Campaign struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	GoalAmount      float64         `json:"goal_amount"`
	CurrentAmount   float64         `json:"current_amount"`
	Status          string          `json:"status"`
	Creator         CampaignCreator `json:"creator"`
	Location        string          `json:"location,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// FundedPercent is the share of the goal raised so far, capped at 100.
func (c Campaign) FundedPercent() float64 {
	if c.GoalAmount <= 0 {
		return 0
	}
	p := c.CurrentAmount / c.GoalAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

// CampaignUpdate carries the editable fields of a campaign. Nil fields are left as is.
type CampaignUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	GoalAmount  *float64   `json:"goal_amount,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}
