package user_test

import (
	"context"
	"sync"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/user"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
	err   error
	block bool
}

func newFakeRepo(users ...*user.User) *fakeRepo {
	r := &fakeRepo{users: map[string]*user.User{}}
	for _, u := range users {
		r.users[u.ID.String()] = u
	}
	return r
}

func (r *fakeRepo) wait(ctx context.Context) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.err
}

func (r *fakeRepo) Create(ctx context.Context, u *user.User) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrDuplicate
		}
	}
	cp := *u
	r.users[u.ID.String()] = &cp
	return nil
}

func (r *fakeRepo) find(ctx context.Context, match func(*user.User) bool) (*user.User, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return u.ID.String() == id })
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return u.Email == email })
}

func (r *fakeRepo) FindByCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	return r.find(ctx, func(u *user.User) bool { return u.StripeCustomerID == customerID })
}

func (r *fakeRepo) UpdateRole(ctx context.Context, id string, role access.Role, customerID string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Role = role
	if customerID != "" {
		u.StripeCustomerID = customerID
	}
	return nil
}

type fakeGoogle struct {
	email string
	err   error
}

func (g fakeGoogle) Email(ctx context.Context, code string) (string, error) {
	return g.email, g.err
}
