package handlers

import (
	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	upstream *services.DreamLiftClient
	log      *zap.Logger
}

func NewAuthHandler(upstream *services.DreamLiftClient, log *zap.Logger) *AuthHandler {
	return &AuthHandler{upstream: upstream, log: log}
}

// Login exchanges admin credentials for a DreamLift token. The gateway keeps
// no credentials of its own; the returned token is the one every later
// request forwards upstream.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}

	client := h.upstream.WithTokens(services.NewStaticToken(""))
	session, err := client.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.Debug("login failed", zap.String("email", req.Email), zap.Error(err))
		return writeError(c, err, h.log)
	}

	return ok(c, dto.AuthResponse{
		Token: session.Token,
		User:  session.User,
	})
}
