package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/orm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.query(ctx).Create(order)
}

// FindByID loads an order with its items and restaurant.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.query(ctx).
		Preload("Items").
		Preload("Restaurant").
		Where("id = ?", id).
		First(&order)
	return found(&order, err)
}

// UpdateStatus writes the status and driver columns only, and only while the
// row is still in status from. With claim set the row must also have no
// driver yet. It reports false when another writer got there first.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, from models.OrderStatus, claim bool) (bool, error) {
	q := r.query(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from)
	if claim {
		q = q.Where("driver_id IS NULL")
	}
	n, err := q.UpdatesAffected(map[string]interface{}{
		"status":    order.Status,
		"driver_id": order.DriverID,
	})
	return n == 1, err
}
