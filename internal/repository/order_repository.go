package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Buyer").Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.withBuyer(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

func (r *orderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.withBuyer(ctx).Where("buyer_id = ?", buyerID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// List returns every order, newest first.
func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.withBuyer(ctx).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatus overwrites the status and returns the updated order. Concurrent
// updates are last-write-wins.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	// MySQL reports zero affected rows for an unchanged value, so existence is
	// decided by the reload.
	return r.FindByID(ctx, id)
}

func (r *orderRepository) withBuyer(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Buyer", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name")
	})
}
