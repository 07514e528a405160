package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor types
const (
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// Audit entity types
const (
	AuditEntityCampaign = "campaign"
	AuditEntityUser     = "user"
	AuditEntityReport   = "report"
)

// Audit actions
const (
	AuditCampaignApproved = "campaign_approved"
	AuditCampaignRejected = "campaign_rejected"
	AuditCampaignUpdated  = "campaign_updated"
	AuditCampaignDeleted  = "campaign_deleted"
	AuditUserRoleChanged  = "user_role_changed"
	AuditUserStatusSet    = "user_status_changed"
	AuditReportDownloaded = "financial_report_downloaded"
)

type AuditLog struct {
	ID         uuid.UUID `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorType  string    `json:"actor_type"` // admin/system
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Meta       any       `json:"meta,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
