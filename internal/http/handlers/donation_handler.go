package handlers

import (
	"github.com/dreamlift/admin-gateway/internal/http/dto"
	"github.com/dreamlift/admin-gateway/internal/middleware"
	"github.com/dreamlift/admin-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DonationHandler struct {
	donationService *services.DonationService
	log             *zap.Logger
}

func NewDonationHandler(donationService *services.DonationService, log *zap.Logger) *DonationHandler {
	return &DonationHandler{donationService: donationService, log: log}
}

func (h *DonationHandler) CreateIntent(c *fiber.Ctx) error {
	var req dto.DonationIntentRequest
	if cont, err := parseBody(c, &req); !cont {
		return err
	}

	email := req.DonorEmail
	if email == "" {
		email = middleware.GetEmail(c)
	}

	d, err := h.donationService.CreateIntent(c.UserContext(), services.DonationRequest{
		CampaignID: req.CampaignID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		DonorEmail: email,
		Anonymous:  req.Anonymous,
		Message:    req.Message,
	})
	if err != nil {
		return writeError(c, err, h.log)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{
		Success: true,
		Data: dto.DonationIntentResponse{
			PaymentIntentID: d.PaymentIntentID,
			ClientSecret:    d.ClientSecret,
			Amount:          d.Amount,
			Currency:        d.Currency,
		},
	})
}
