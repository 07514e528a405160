package models

import "time"

// Donation statuses
const (
	DonationStatusPending   = "pending"
	DonationStatusSucceeded = "succeeded"
	DonationStatusFailed    = "failed"
)

// Donation is a contribution intent created for a campaign. Amount is in minor units.
type Donation struct {
	CampaignID      string    `json:"campaign_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	DonorEmail      string    `json:"donor_email,omitempty"`
	Anonymous       bool      `json:"anonymous"`
	Message         string    `json:"message,omitempty"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
