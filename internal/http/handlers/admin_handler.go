package handlers

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *services.AdminService
	log          *zap.Logger
}

func NewAdminHandler(adminService *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, log: log}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	refresh := c.QueryBool("refresh", false)
	snap, err := h.adminService.Dashboard(c.UserContext(), actor(c), refresh)
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, snap)
}

func (h *AdminHandler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.adminService.Campaigns(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err, h.log)
	}
	if status := c.Query("status"); status != "" {
		filtered := campaigns[:0:0]
		for _, cp := range campaigns {
			if cp.Status == status {
				filtered = append(filtered, cp)
			}
		}
		campaigns = filtered
	}
	return ok(c, campaigns)
}

func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	pending, err := h.adminService.PendingCampaigns(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, pending)
}

func (h *AdminHandler) ApproveCampaign(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.adminService.ApproveCampaign(c.UserContext(), actor(c), id); err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, fiber.Map{"id": id, "status": "active"})
}

func (h *AdminHandler) RejectCampaign(c *fiber.Ctx) error {
	var req dto.RejectCampaignRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}

	id := c.Params("id")
	if err := h.adminService.RejectCampaign(c.UserContext(), actor(c), id, req.Reason); err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, fiber.Map{"id": id, "status": "rejected", "reason": req.Reason})
}

func (h *AdminHandler) UpdateCampaign(c *fiber.Ctx) error {
	var req dto.UpdateCampaignRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}
	if req.IsEmpty() {
		return fail(c, fiber.StatusBadRequest, "no fields to update")
	}

	campaign, err := h.adminService.UpdateCampaign(c.UserContext(), actor(c), c.Params("id"), req.ToModel())
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, campaign)
}

func (h *AdminHandler) DeleteCampaign(c *fiber.Ctx) error {
	if err := h.adminService.DeleteCampaign(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return writeError(c, err, h.log)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.Users(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, users)
}

func (h *AdminHandler) ChangeUserRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}

	id := c.Params("id")
	if err := h.adminService.ChangeUserRole(c.UserContext(), actor(c), id, req.Role); err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, fiber.Map{"id": id, "role": req.Role})
}

func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	var req dto.SetUserStatusRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}

	id := c.Params("id")
	if err := h.adminService.SetUserActive(c.UserContext(), actor(c), id, *req.Active); err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, fiber.Map{"id": id, "is_active": *req.Active})
}

func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	a, err := h.adminService.Analytics(c.UserContext(), actor(c))
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, a)
}

func (h *AdminHandler) FinancialReport(c *fiber.Ctx) error {
	period := c.Query("period", "month")
	if !services.IsValidPeriod(period) {
		return fail(c, fiber.StatusBadRequest, "period must be one of week, month, quarter, year")
	}

	var buf bytes.Buffer
	if _, err := h.adminService.FinancialReport(c.UserContext(), actor(c), period, &buf); err != nil {
		return writeError(c, err, h.log)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="financial-report-%s.pdf"`, period))
	return c.Send(buf.Bytes())
}

func (h *AdminHandler) InvalidateCache(c *fiber.Ctx) error {
	if err := h.adminService.InvalidateCache(c.UserContext(), actor(c)); err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, fiber.Map{"state": "stale"})
}

func (h *AdminHandler) AuditTrail(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := h.adminService.AuditTrail(c.UserContext(), c.Query("entity_type"), c.Query("entity_id"), limit, offset)
	if err != nil {
		return writeError(c, err, h.log)
	}
	return ok(c, entries)
}
