package user

import (
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"gorm.io/gorm"
)

type UserContainer struct {
	Repo    UserRepository
	Service UserService
	Handler *Handler
}

func NewUserContainer(db *gorm.DB, google GoogleAuthenticator, session *auth.Handler, timeout, tokenTTL time.Duration) *UserContainer {
	repo := NewRepository(db)
	service := NewService(repo, google, timeout, tokenTTL)
	handler := NewHandler(service, session)

	return &UserContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
