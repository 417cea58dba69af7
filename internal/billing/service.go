package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/saulo-duarte/mathbank-lambda/internal/user"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/datatypes"
)

var (
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrPaymentUnavailable = errors.New("payment provider unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrUnknownReturn      = errors.New("unknown payment return status")
)

const (
	eventCheckoutCompleted     = "checkout.session.completed"
	eventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	eventSubscriptionDeleted   = "customer.subscription.deleted"
)

// RoleSetter is the slice of the identity gate that billing writes to.
type RoleSetter interface {
	SetRole(ctx context.Context, ref user.Ref, role access.Role) error
	SetRoleByCustomer(ctx context.Context, customerID string, role access.Role) error
}

type BillingService interface {
	Checkout(ctx context.Context, sess *auth.Session, plan string) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ReturnStatus(payment string) (*ReturnStatus, error)
}

type billingService struct {
	provider      Provider
	events        EventRepository
	roles         RoleSetter
	webhookSecret string
	now           func() time.Time
}

func NewService(provider Provider, events EventRepository, roles RoleSetter, webhookSecret string) BillingService {
	return &billingService{
		provider:      provider,
		events:        events,
		roles:         roles,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

func (s *billingService) Checkout(ctx context.Context, sess *auth.Session, plan string) (*CheckoutResult, error) {
	log := config.WithContext(ctx)
	if sess == nil {
		return nil, auth.ErrUnauthorized
	}
	p, err := ParsePlan(plan)
	if err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: billing is not configured", ErrPaymentUnavailable)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, sess.Email, sess.UserID, p)
	if err != nil {
		log.WithError(err).WithField("plan", p).Error("Failed to create checkout session")
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": sess.UserID, "plan": p}).Info("Checkout session created")
	return &CheckoutResult{URL: url, Plan: p}, nil
}

func (s *billingService) verify(payload []byte, signature string) (stripe.Event, error) {
	if s.webhookSecret == "" || signature == "" {
		return stripe.Event{}, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	log := config.WithContext(ctx)

	event, err := s.verify(payload, signature)
	if err != nil {
		log.WithError(err).Warn("Rejected webhook")
		return err
	}
	log = log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	seen, err := s.events.Exists(ctx, event.ID)
	if err != nil {
		log.WithError(err).Error("Failed to check payment event")
		return err
	}
	if seen {
		log.Info("Duplicate webhook ignored")
		return nil
	}

	if err := s.apply(ctx, log, event); err != nil {
		return err
	}

	if _, err := s.events.Record(ctx, &PaymentEvent{
		ID:          event.ID,
		Type:        string(event.Type),
		Payload:     datatypes.JSON(payload),
		ProcessedAt: s.now(),
	}); err != nil {
		log.WithError(err).Error("Failed to record payment event")
		return err
	}
	return nil
}

func (s *billingService) apply(ctx context.Context, log *logrus.Entry, event stripe.Event) error {
	if event.Data == nil {
		log.Warn("Webhook without data")
		return nil
	}
	switch string(event.Type) {
	case eventCheckoutCompleted, eventAsyncPaymentSucceeded:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			log.WithError(err).Warn("Undecodable checkout session")
			return nil
		}
		if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
			cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
			log.WithField("payment_status", cs.PaymentStatus).Info("Checkout not paid yet")
			return nil
		}
		return s.setRole(ctx, log, checkoutRef(&cs), access.RolePro)

	case eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.WithError(err).Warn("Undecodable subscription")
			return nil
		}
		if sub.Customer == nil || sub.Customer.ID == "" {
			log.Warn("Subscription without customer")
			return nil
		}
		return s.setRole(ctx, log, user.Ref{CustomerID: sub.Customer.ID}, access.RoleFree)
	}

	log.Debug("Unhandled webhook type")
	return nil
}

func checkoutRef(cs *stripe.CheckoutSession) user.Ref {
	ref := user.Ref{ID: cs.ClientReferenceID, Email: cs.CustomerEmail}
	if ref.Email == "" && cs.CustomerDetails != nil {
		ref.Email = cs.CustomerDetails.Email
	}
	if cs.Customer != nil {
		ref.CustomerID = cs.Customer.ID
	}
	return ref
}

// setRole treats an unknown user as settled so the provider stops retrying;
// every other failure is returned for redelivery.
func (s *billingService) setRole(ctx context.Context, log *logrus.Entry, ref user.Ref, role access.Role) error {
	var err error
	if ref.ID == "" && ref.Email == "" {
		err = s.roles.SetRoleByCustomer(ctx, ref.CustomerID, role)
	} else {
		err = s.roles.SetRole(ctx, ref, role)
	}

	switch {
	case err == nil:
		log.WithField("role", role).Info("Applied payment event")
		return nil
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrInvalidEmail):
		log.WithError(err).Warn("Payment event for unknown user")
		return nil
	}
	log.WithError(err).Error("Failed to apply payment event")
	return err
}

func (s *billingService) ReturnStatus(payment string) (*ReturnStatus, error) {
	switch payment {
	case "success":
		return &ReturnStatus{
			Payment: payment,
			Message: "Payment received. Your plan updates once the provider confirms it; refresh your session to see Pro access.",
		}, nil
	case "cancelled":
		return &ReturnStatus{Payment: payment, Message: "Checkout was cancelled. You are still on your current plan."}, nil
	}
	return nil, ErrUnknownReturn
}
