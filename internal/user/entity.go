package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/mathbank-lambda/internal/access"
)

type User struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string      `gorm:"type:text;uniqueIndex;not null" json:"email"`
	FullName         string      `gorm:"type:text" json:"full_name"`
	Role             access.Role `gorm:"column:user_role;type:text;not null;default:'free'" json:"user_role"`
	PasswordHash     string      `gorm:"type:text" json:"-"`
	StripeCustomerID string      `gorm:"type:text;index" json:"-"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Ref locates a user by ID when it is a valid UUID, otherwise by the first
// non-empty of Email and CustomerID.
type Ref struct {
	ID         string
	Email      string
	CustomerID string
}

type AuthResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
