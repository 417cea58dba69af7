package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrWeakPassword        = errors.New("password must have at least 8 characters")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)

var validate = validator.New()

type UserService interface {
	ResolveRole(ctx context.Context, email string) (access.Role, error)
	Login(ctx context.Context, email string) (*AuthResult, error)
	Register(ctx context.Context, email, fullName string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, code string) (*AuthResult, error)
	Refresh(ctx context.Context, sess *auth.Session) (*AuthResult, error)
	Me(ctx context.Context, sess *auth.Session) (*User, error)
	SetRole(ctx context.Context, ref Ref, role access.Role) error
	SetRoleByCustomer(ctx context.Context, customerID string, role access.Role) error
}

type userService struct {
	repo     UserRepository
	google   GoogleAuthenticator
	timeout  time.Duration
	tokenTTL time.Duration
}

func NewService(repo UserRepository, google GoogleAuthenticator, timeout, tokenTTL time.Duration) UserService {
	return &userService{
		repo:     repo,
		google:   google,
		timeout:  timeout,
		tokenTTL: tokenTTL,
	}
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(e, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// providerErr maps repository failures onto the gate's error taxonomy.
func providerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, ErrDuplicate):
		return ErrUserAlreadyExists
	}
	return fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
}

func (s *userService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *userService) findByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	u, err := s.repo.FindByEmail(ctx, email)
	return u, providerErr(err)
}

// storedRole normalizes a role read from the store. Unknown values keep
// their normalized text so the policy treats them as restricted.
func storedRole(r access.Role) access.Role {
	role, _ := access.ParseRole(string(r))
	if role == "" {
		return access.RoleFree
	}
	return role
}

func (s *userService) issue(u *User) (*AuthResult, error) {
	u.Role = storedRole(u.Role)
	token, err := auth.GenerateJWT(u.ID.String(), u.Email, u.Role.String(), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: time.Now().Add(s.tokenTTL)}, nil
}

// resolve looks up the account for email with its role normalized.
func (s *userService) resolve(ctx context.Context, email string) (*User, error) {
	e, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.findByEmail(ctx, e)
	if err != nil {
		return nil, err
	}
	u.Role = storedRole(u.Role)
	return u, nil
}

func (s *userService) ResolveRole(ctx context.Context, email string) (access.Role, error) {
	u, err := s.resolve(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *userService) Login(ctx context.Context, email string) (*AuthResult, error) {
	log := config.WithContext(ctx)

	u, err := s.resolve(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.WithField("email", email).Info("Login attempted for unregistered email")
		} else if !errors.Is(err, ErrInvalidEmail) {
			log.WithError(err).Error("Failed to look up user for login")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("User logged in")
	return s.issue(u)
}

func (s *userService) create(ctx context.Context, email, fullName, passwordHash string) (*User, error) {
	log := config.WithContext(ctx)

	if _, err := s.findByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		log.WithError(err).Error("Failed to check existing user")
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Role:         access.RoleFree,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	cctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := providerErr(s.repo.Create(cctx, u)); err != nil {
		log.WithError(err).Error("Failed to create user")
		return nil, err
	}

	log.WithField("user_id", u.ID).Info("User registered")
	return u, nil
}

func (s *userService) Register(ctx context.Context, email, fullName string) (*User, error) {
	e, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, e, fullName, "")
}

func (s *userService) SignUp(ctx context.Context, email, password, fullName string) (*AuthResult, error) {
	e, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validate.Var(password, "min=8"); err != nil {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.create(ctx, e, fullName, string(hash))
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *userService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	log := config.WithContext(ctx)

	e, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.findByEmail(ctx, e)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		log.WithField("user_id", u.ID).Warn("Rejected password sign-in")
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *userService) LoginWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	log := config.WithContext(ctx)
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}

	gctx, cancel := s.bounded(ctx)
	defer cancel()
	email, err := s.google.Email(gctx, code)
	if err != nil {
		log.WithError(err).Warn("Google login failed")
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	return s.Login(ctx, email)
}

// Refresh re-resolves the role from the identity store. It is the only path
// by which a session's role changes.
func (s *userService) Refresh(ctx context.Context, sess *auth.Session) (*AuthResult, error) {
	if sess == nil {
		return nil, auth.ErrUnauthorized
	}
	u, err := s.Me(ctx, sess)
	if err != nil {
		return nil, err
	}
	if u, err = s.resolve(ctx, u.Email); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *userService) Me(ctx context.Context, sess *auth.Session) (*User, error) {
	if sess == nil {
		return nil, auth.ErrUnauthorized
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	u, err := s.repo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, providerErr(err)
	}
	u.Role = storedRole(u.Role)
	return u, nil
}

func (s *userService) locate(ctx context.Context, ref Ref) (*User, error) {
	if _, err := uuid.Parse(ref.ID); err == nil {
		return s.repo.GetByID(ctx, ref.ID)
	}
	switch {
	case ref.Email != "":
		e, err := normalizeEmail(ref.Email)
		if err != nil {
			return nil, err
		}
		return s.repo.FindByEmail(ctx, e)
	case ref.CustomerID != "":
		return s.repo.FindByCustomerID(ctx, ref.CustomerID)
	}
	return nil, ErrNotFound
}

func (s *userService) SetRole(ctx context.Context, ref Ref, role access.Role) error {
	log := config.WithContext(ctx)
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	u, err := s.locate(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			return err
		}
		return providerErr(err)
	}
	if err := s.repo.UpdateRole(ctx, u.ID.String(), role, ref.CustomerID); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Error("Failed to update user role")
		return providerErr(err)
	}

	log.WithFields(logrus.Fields{
		"user_id": u.ID,
		"from":    u.Role,
		"to":      role,
	}).Info("User role changed")
	return nil
}

func (s *userService) SetRoleByCustomer(ctx context.Context, customerID string, role access.Role) error {
	if customerID == "" {
		return ErrUserNotFound
	}
	return s.SetRole(ctx, Ref{CustomerID: customerID}, role)
}
