package handlers

import (
	"github.com/dreamlift/admin-gateway/internal/middleware"
	"github.com/dreamlift/admin-gateway/internal/rbac"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	upstream *services.DreamLiftClient
	log      *zap.Logger
}

func NewUserHandler(upstream *services.DreamLiftClient, log *zap.Logger) *UserHandler {
	return &UserHandler{upstream: upstream, log: log}
}

// GetMe restores the caller's session from DreamLift and lists what the
// gateway will let them do.
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	client := h.upstream.WithTokens(services.NewStaticToken(middleware.GetToken(c)))
	session, err := client.Me(c.UserContext())
	if err != nil {
		return writeError(c, err, h.log)
	}

	perms := append([]string{}, rbac.RolePermissions[middleware.GetRole(c)]...)

	return ok(c, fiber.Map{
		"user":        session.User,
		"permissions": perms,
	})
}
