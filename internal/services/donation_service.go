package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dreamlift/admin-gateway/internal/events"
	"github.com/dreamlift/admin-gateway/internal/models"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

var (
	ErrPaymentsDisabled  = errors.New("payments are not configured")
	ErrAmountTooSmall    = errors.New("donation amount is below the minimum")
	ErrInvalidCurrency   = errors.New("unsupported currency")
	ErrCampaignNotActive = errors.New("campaign is not accepting donations")
)

// PaymentIntents is the part of the Stripe client used for donations.
type PaymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type CampaignLookup interface {
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
}

type DonationService struct {
	intents    PaymentIntents
	campaigns  CampaignLookup
	publisher  events.Publisher
	currency   string
	minAmount  int64
	currencies map[string]bool
	log        *zap.Logger
}

// NewDonationService creates the service. intents may be nil when Stripe is
// not configured; every call then fails with ErrPaymentsDisabled.
func NewDonationService(
	intents PaymentIntents,
	campaigns CampaignLookup,
	publisher events.Publisher,
	currency string,
	minAmount int64,
	log *zap.Logger,
) *DonationService {
	currency = strings.ToLower(currency)
	if currency == "" {
		currency = "usd"
	}
	if minAmount <= 0 {
		minAmount = 100
	}
	return &DonationService{
		intents:    intents,
		campaigns:  campaigns,
		publisher:  publisher,
		currency:   currency,
		minAmount:  minAmount,
		currencies: map[string]bool{currency: true, "usd": true, "eur": true, "gbp": true, "idr": true},
		log:        log,
	}
}

type DonationRequest struct {
	CampaignID string
	Amount     int64 // minor units
	Currency   string
	DonorEmail string
	Anonymous  bool
	Message    string
}

// CreateIntent checks the campaign is live and opens a Stripe PaymentIntent
// whose client secret the browser confirms.
func (s *DonationService) CreateIntent(ctx context.Context, req DonationRequest) (*models.Donation, error) {
	if s.intents == nil {
		return nil, ErrPaymentsDisabled
	}
	if req.Amount < s.minAmount {
		return nil, fmt.Errorf("%w: %d < %d", ErrAmountTooSmall, req.Amount, s.minAmount)
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.currency
	}
	if !s.currencies[currency] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
	}

	campaign, err := s.campaigns.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, fmt.Errorf("%w: status %s", ErrCampaignNotActive, campaign.Status)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("Donation to " + campaign.Title),
	}
	params.Context = ctx
	params.AddMetadata("campaign_id", campaign.ID)
	params.AddMetadata("anonymous", strconv.FormatBool(req.Anonymous))
	if req.DonorEmail != "" {
		params.ReceiptEmail = stripe.String(req.DonorEmail)
		if !req.Anonymous {
			params.AddMetadata("donor_email", req.DonorEmail)
		}
	}
	if req.Message != "" {
		params.AddMetadata("message", truncate(req.Message, 500))
	}

	pi, err := s.intents.New(params)
	if err != nil {
		s.log.Error("stripe payment intent failed",
			zap.String("campaign_id", campaign.ID),
			zap.Int64("amount", req.Amount),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	d := &models.Donation{
		CampaignID:      campaign.ID,
		Amount:          req.Amount,
		Currency:        currency,
		DonorEmail:      req.DonorEmail,
		Anonymous:       req.Anonymous,
		Message:         req.Message,
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          models.DonationStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	s.log.Info("donation intent created",
		zap.String("campaign_id", d.CampaignID),
		zap.String("payment_intent", d.PaymentIntentID),
		zap.Int64("amount", d.Amount),
		zap.String("currency", d.Currency),
	)

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.ChannelNotifications, events.Event{
			Type: events.EventDonationIntent,
			Payload: map[string]any{
				events.KeyID: d.CampaignID,
				"amount":     d.Amount,
				"currency":   d.Currency,
			},
		})
		if err != nil {
			s.log.Warn("failed to publish donation event",
				zap.String("payment_intent", d.PaymentIntentID),
				zap.Error(err),
			)
		}
	}
	return d, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
