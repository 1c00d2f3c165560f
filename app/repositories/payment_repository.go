package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/orm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return orm.Use(r.db).WithContext(ctx).Create(p)
}

// ForUser returns the payments made by userID, newest first.
func (r *PaymentRepository) ForUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	var out []models.Payment
	err := orm.Use(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Get(&out)
	return out, err
}
