package billing

import (
	"time"

	"gorm.io/datatypes"
)

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case "", PlanMonthly:
		return PlanMonthly, nil
	case PlanYearly:
		return PlanYearly, nil
	}
	return "", ErrUnknownPlan
}

// PaymentEvent is a verified provider event that has been applied.
type PaymentEvent struct {
	ID          string         `gorm:"type:text;primaryKey" json:"id"`
	Type        string         `gorm:"type:text;not null;index" json:"type"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `gorm:"not null" json:"processed_at"`
}

type CheckoutResult struct {
	URL  string `json:"url"`
	Plan Plan   `json:"plan"`
}

type ReturnStatus struct {
	Payment string `json:"payment"`
	Message string `json:"message"`
}
