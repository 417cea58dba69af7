package user

import (
	"context"
	"errors"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByCustomerID(ctx context.Context, customerID string) (*User, error)
	UpdateRole(ctx context.Context, id string, role access.Role, customerID string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (r *userRepository) Create(ctx context.Context, u *User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) FindByCustomerID(ctx context.Context, customerID string) (*User, error) {
	return r.first(ctx, "stripe_customer_id = ?", customerID)
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role access.Role, customerID string) error {
	updates := map[string]interface{}{"user_role": role}
	if customerID != "" {
		updates["stripe_customer_id"] = customerID
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
