package middleware

import (
	"strings"

	"github.com/dreamlift/admin-gateway/internal/auth"
	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
	CtxToken  = "token"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Abort(c, fiber.StatusUnauthorized, "missing authorization header")
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return Abort(c, fiber.StatusUnauthorized, "invalid authorization format")
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return Abort(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxRole, claims.Role)
		c.Locals(CtxEmail, claims.Email)
		// forwarded upstream as the admin's bearer token
		c.Locals(CtxToken, tokenStr)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxUserID).(string)
	return id
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxRole).(string)
	return role
}

func GetEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(CtxEmail).(string)
	return email
}

func GetToken(c *fiber.Ctx) string {
	tok, _ := c.Locals(CtxToken).(string)
	return tok
}

// RequirePermission rejects callers whose role lacks perm.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetRole(c), perm) {
			return Abort(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// Abort writes the failure envelope used across the API.
func Abort(c *fiber.Ctx, status int, msg string) error {
	reqID, _ := c.Locals(CtxRequestID).(string)
	return c.Status(status).JSON(fiber.Map{
		"success":    false,
		"error":      msg,
		"request_id": reqID,
	})
}
