package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// OrderService exposes order tracking.
type OrderService interface {
	BuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	// SetStatus overwrites the status of an order. Only the status value is
	// checked; any known status may follow any other.
	SetStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error)
}

type orderService struct {
	repo repository.OrderRepository
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) BuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	return s.repo.FindByBuyer(ctx, buyerID)
}

func (s *orderService) AllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.List(ctx)
}

func (s *orderService) SetStatus(ctx context.Context, orderID uuid.UUID, raw string) (*model.Order, error) {
	status, ok := model.ParseOrderStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%q: %w", raw, apperrors.ErrInvalidStatus)
	}
	return s.repo.UpdateStatus(ctx, orderID, status)
}
