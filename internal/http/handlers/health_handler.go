package handlers

import (
	"context"
	"time"

	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type HealthHandler struct {
	registry *services.SessionRegistry
	checks   map[string]Check
}

func NewHealthHandler(registry *services.SessionRegistry, checks map[string]Check) *HealthHandler {
	return &HealthHandler{registry: registry, checks: checks}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	}
	if h.registry != nil {
		resp.Sessions = h.registry.Count()
	}

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
