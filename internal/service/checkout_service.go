package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
)

// CheckoutService charges carts through the payment gateway.
type CheckoutService interface {
	ClientToken(ctx context.Context) (string, error)
	// Pay charges the sum of the cart's line prices and records the order.
	// No order exists unless the gateway accepted the sale.
	Pay(ctx context.Context, buyerID uuid.UUID, nonce string, cart []model.CartItem) (*model.Order, error)
}

type checkoutService struct {
	gateway   payment.Gateway
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(gateway payment.Gateway, orderRepo repository.OrderRepository, logger *zap.Logger) CheckoutService {
	return &checkoutService{gateway: gateway, orderRepo: orderRepo, logger: logger}
}

func (s *checkoutService) ClientToken(ctx context.Context) (string, error) {
	token, err := s.gateway.ClientToken(ctx)
	if err != nil {
		s.logger.Error("generate client token", zap.Error(err))
		return "", err
	}
	return token, nil
}

// CartTotal sums the client-supplied line prices. Prices are not checked
// against the catalog.
func CartTotal(cart []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart {
		total = total.Add(item.Price)
	}
	return total
}

func (s *checkoutService) Pay(ctx context.Context, buyerID uuid.UUID, nonce string, cart []model.CartItem) (*model.Order, error) {
	if strings.TrimSpace(nonce) == "" {
		return nil, apperrors.NewValidationError("nonce", "Payment nonce is required", http.StatusBadRequest)
	}
	if len(cart) == 0 {
		return nil, apperrors.NewValidationError("cart", "Cart is empty", http.StatusBadRequest)
	}

	amount := CartTotal(cart)
	txn, err := s.gateway.Sale(ctx, payment.SaleRequest{
		Amount:             amount,
		PaymentMethodNonce: nonce,
		Options:            payment.SaleOptions{SubmitForSettlement: true},
	})
	if err != nil {
		s.logger.Warn("sale rejected",
			zap.String("buyer_id", buyerID.String()),
			zap.String("amount", amount.StringFixed(2)),
			zap.Error(err))
		return nil, err
	}

	order := &model.Order{
		Products: cart,
		Payment: model.PaymentResult{
			Success:       true,
			TransactionID: txn.ID,
			Status:        txn.Status,
			Amount:        txn.Amount,
			CurrencyCode:  txn.CurrencyCode,
		},
		BuyerID: buyerID,
		Status:  model.OrderStatusNotProcessed,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.voidAfterFailedSave(ctx, txn.ID, err)
		return nil, fmt.Errorf("save order for transaction %s: %w", txn.ID, err)
	}
	return order, nil
}

// voidAfterFailedSave reverses a charge whose order could not be recorded.
func (s *checkoutService) voidAfterFailedSave(ctx context.Context, transactionID string, saveErr error) {
	logger := s.logger.With(zap.String("transaction_id", transactionID), zap.NamedError("save_error", saveErr))
	if err := s.gateway.Void(context.WithoutCancel(ctx), transactionID); err != nil {
		logger.Error("void after failed order save", zap.Error(err))
		return
	}
	logger.Warn("voided transaction after failed order save")
}
