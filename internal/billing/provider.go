package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Provider creates hosted checkout pages.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, email, userID string, plan Plan) (string, error)
}

type StripeConfig struct {
	SecretKey      string
	MonthlyPriceID string
	YearlyPriceID  string
	PublicURL      string
	Timeout        time.Duration
}

type stripeProvider struct {
	client *session.Client
	cfg    StripeConfig
}

func NewStripeProvider(cfg StripeConfig) Provider {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     config.Logger,
	})
	return &stripeProvider{
		client: &session.Client{B: backend, Key: cfg.SecretKey},
		cfg:    cfg,
	}
}

func (p *stripeProvider) priceFor(plan Plan) (string, error) {
	var id string
	switch plan {
	case PlanMonthly:
		id = p.cfg.MonthlyPriceID
	case PlanYearly:
		id = p.cfg.YearlyPriceID
	default:
		return "", ErrUnknownPlan
	}
	if id == "" {
		return "", fmt.Errorf("%w: no price configured for %s plan", ErrPaymentUnavailable, plan)
	}
	return id, nil
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, email, userID string, plan Plan) (string, error) {
	price, err := p.priceFor(plan)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(p.cfg.PublicURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(email),
		ClientReferenceID:  stripe.String(userID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(base + "/?payment=success"),
		CancelURL:  stripe.String(base + "/?payment=cancelled"),
	}
	params.Context = ctx

	s, err := p.client.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	if s.URL == "" {
		return "", fmt.Errorf("%w: checkout session has no url", ErrPaymentUnavailable)
	}
	return s.URL, nil
}
