package billing

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// Record stores the event and reports false when the id was already present.
	Record(ctx context.Context, e *PaymentEvent) (bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var e PaymentEvent
	err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&e).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	}
	return false, err
}

func (r *eventRepository) Record(ctx context.Context, e *PaymentEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
