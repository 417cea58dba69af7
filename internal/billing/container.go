package billing

import "gorm.io/gorm"

type BillingContainer struct {
	Repo    EventRepository
	Service BillingService
	Handler *Handler
}

// NewBillingContainer wires billing; a nil provider leaves checkout unavailable.
func NewBillingContainer(db *gorm.DB, provider Provider, roles RoleSetter, webhookSecret string) *BillingContainer {
	repo := NewRepository(db)
	service := NewService(provider, repo, roles, webhookSecret)
	handler := NewHandler(service)

	return &BillingContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
