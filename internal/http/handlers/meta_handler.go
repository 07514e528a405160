package handlers

import (
	"github.com/dreamlift/admin-gateway/internal/models"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaStatus struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Next  []string `json:"next"`
}

type MetaRole struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var campaignStatusLabels = []MetaStatus{
	{ID: models.CampaignStatusPending, Label: "Pending review"},
	{ID: models.CampaignStatusActive, Label: "Active"},
	{ID: models.CampaignStatusRejected, Label: "Rejected"},
	{ID: models.CampaignStatusCompleted, Label: "Completed"},
}

var predefinedRoles = []MetaRole{
	{ID: models.RoleUser, Label: "Donor"},
	{ID: models.RoleCreator, Label: "Campaign creator"},
	{ID: models.RoleAdmin, Label: "Administrator"},
}

func (h *MetaHandler) GetCampaignStatuses(c *fiber.Ctx) error {
	out := make([]MetaStatus, len(campaignStatusLabels))
	for i, s := range campaignStatusLabels {
		s.Next = append([]string{}, models.ValidCampaignTransitions[s.ID]...)
		out[i] = s
	}
	return ok(c, out)
}

func (h *MetaHandler) GetRoles(c *fiber.Ctx) error {
	return ok(c, predefinedRoles)
}

func (h *MetaHandler) GetReportPeriods(c *fiber.Ctx) error {
	return ok(c, services.ReportPeriods)
}
