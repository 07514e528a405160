package dto

import (
	"time"

	"github.com/dreamlift/admin-gateway/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RejectCampaignRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type UpdateCampaignRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=20000"`
	GoalAmount  *float64   `json:"goal_amount,omitempty" validate:"omitempty,gt=0"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (r UpdateCampaignRequest) ToModel() models.CampaignUpdate {
	return models.CampaignUpdate{
		Title:       r.Title,
		Description: r.Description,
		GoalAmount:  r.GoalAmount,
		Location:    r.Location,
		Tags:        r.Tags,
		Deadline:    r.Deadline,
	}
}

func (r UpdateCampaignRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.GoalAmount == nil &&
		r.Location == nil && r.Tags == nil && r.Deadline == nil
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user creator admin"`
}

type SetUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type DonationIntentRequest struct {
	CampaignID string `json:"campaign_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"` // minor units
	Currency   string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	DonorEmail string `json:"donor_email,omitempty" validate:"omitempty,email"`
	Anonymous  bool   `json:"anonymous"`
	Message    string `json:"message,omitempty" validate:"omitempty,max=500"`
}
