package handlers

import (
	"context"
	"errors"

	"github.com/dreamlift/admin-gateway/internal/admincache"
	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/middleware"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(dto.SuccessResponse{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, RequestID: reqID})
}

func invalid(c *fiber.Ctx, fields map[string]string) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:     "validation failed",
		Fields:    fields,
		RequestID: reqID,
	})
}

// parseBody decodes and validates the request body into req. It writes the
// 400 reply itself and reports false when the caller should stop.
func parseBody(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields := dto.Validate(req); fields != nil {
		return false, invalid(c, fields)
	}
	return true, nil
}

// writeError maps service and upstream errors to HTTP replies.
func writeError(c *fiber.Ctx, err error, log *zap.Logger) error {
	var apiErr *services.APIError

	switch {
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidIdentity):
		return fail(c, fiber.StatusUnauthorized, "session expired, please log in again")
	case errors.Is(err, admincache.ErrMutationInFlight):
		return fail(c, fiber.StatusConflict, "another change to this item is still in progress")
	case errors.Is(err, admincache.ErrInvalidTransition), errors.Is(err, services.ErrCampaignNotActive):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrReasonRequired),
		errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrAmountTooSmall),
		errors.Is(err, services.ErrInvalidCurrency):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPaymentsDisabled), errors.Is(err, services.ErrAuditDisabled):
		return fail(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return fail(c, apiErr.Status, apiErr.Message)
		}
		log.Warn("upstream error", zap.Int("status", apiErr.Status), zap.String("message", apiErr.Message))
		return fail(c, fiber.StatusBadGateway, apiErr.Message)
	case errors.Is(err, admincache.ErrAllFetchesFailed), errors.Is(err, services.ErrTransport):
		log.Warn("upstream unavailable", zap.Error(err))
		return fail(c, fiber.StatusBadGateway, "DreamLift API is unavailable, try again shortly")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fail(c, fiber.StatusGatewayTimeout, "request cancelled")
	default:
		log.Error("unhandled error", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
}

func actor(c *fiber.Ctx) services.Actor {
	return services.Actor{
		ID:    middleware.GetUserID(c),
		Token: middleware.GetToken(c),
	}
}
