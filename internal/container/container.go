package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/billing"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/saulo-duarte/mathbank-lambda/internal/question"
	"github.com/saulo-duarte/mathbank-lambda/internal/router"
	"github.com/saulo-duarte/mathbank-lambda/internal/user"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Settings          config.Settings
	UserContainer     *user.UserContainer
	QuestionContainer *question.QuestionContainer
	BillingContainer  *billing.BillingContainer
}

func New(ctx context.Context) (*Container, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	config.Init()
	auth.Init()

	if err := config.Connect(ctx, settings.DBDriver, settings.DBDSN); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := config.DB.WithContext(ctx).AutoMigrate(&user.User{}, &billing.PaymentEvent{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	bank, err := question.LoadBank(ctx, settings.QuestionDir)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	var google user.GoogleAuthenticator
	if settings.GoogleEnabled() {
		google = user.NewGoogleAuthenticator(settings.GoogleClientID, settings.GoogleClientSecret, settings.GoogleRedirectURL)
	}
	session := auth.NewHandler(settings.CookieDomain, settings.CookieSecure)
	userContainer := user.NewUserContainer(config.DB, google, session, settings.ProviderTimeout, settings.TokenTTL)

	questionContainer := question.NewQuestionContainer(bank, settings.Policy)

	var provider billing.Provider
	if settings.BillingEnabled() {
		provider = billing.NewStripeProvider(billing.StripeConfig{
			SecretKey:      settings.StripeSecretKey,
			MonthlyPriceID: settings.StripeMonthlyPriceID,
			YearlyPriceID:  settings.StripeYearlyPriceID,
			PublicURL:      settings.PublicURL,
			Timeout:        settings.ProviderTimeout,
		})
	}
	billingContainer := billing.NewBillingContainer(config.DB, provider, userContainer.Service, settings.StripeWebhookSecret)

	config.WithContext(ctx).WithFields(logrus.Fields{
		"records":  len(bank.Records()),
		"warnings": len(bank.Warnings()),
		"billing":  settings.BillingEnabled(),
		"google":   settings.GoogleEnabled(),
	}).Info("Container ready")

	return &Container{
		Settings:          settings,
		UserContainer:     userContainer,
		QuestionContainer: questionContainer,
		BillingContainer:  billingContainer,
	}, nil
}

func (c *Container) Router() http.Handler {
	return router.New(router.RouterConfig{
		UserHandler:     c.UserContainer.Handler,
		QuestionHandler: c.QuestionContainer.Handler,
		BillingHandler:  c.BillingContainer.Handler,
		AuthMode:        c.Settings.AuthMode,
		GoogleEnabled:   c.Settings.GoogleEnabled(),
		CORSOrigins:     c.Settings.CORSOrigins,
	})
}
