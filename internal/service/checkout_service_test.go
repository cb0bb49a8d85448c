package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/payment"
)

func testCart() []model.CartItem {
	return []model.CartItem{
		{ID: uuid.New(), Name: "Mouse", Price: decimal.NewFromInt(100)},
		{ID: uuid.New(), Name: "Keyboard", Price: decimal.NewFromInt(250)},
	}
}

func saleOf(amount int64) interface{} {
	return mock.MatchedBy(func(req payment.SaleRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(amount)) &&
			req.PaymentMethodNonce == "fake-nonce" &&
			req.Options.SubmitForSettlement
	})
}

func TestCartTotal(t *testing.T) {
	assert.True(t, decimal.NewFromInt(350).Equal(CartTotal(testCart())))
	assert.True(t, decimal.Zero.Equal(CartTotal(nil)))
}

func TestCheckoutService_Pay(t *testing.T) {
	buyerID := uuid.New()
	txn := &payment.Transaction{
		ID:           "txn_1",
		Status:       "SUBMITTED_FOR_SETTLEMENT",
		Amount:       decimal.NewFromInt(350),
		CurrencyCode: "USD",
	}
	declined := &payment.Error{Message: "Insufficient Funds"}

	tests := []struct {
		name          string
		setupMock     func(*MockGateway, *MockOrderRepository)
		expectedError error
		ordersCreated int
	}{
		{
			name: "successful sale creates one order",
			setupMock: func(g *MockGateway, r *MockOrderRepository) {
				g.On("Sale", mock.Anything, saleOf(350)).Return(txn, nil)
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.Order")).Return(nil)
			},
			ordersCreated: 1,
		},
		{
			name: "declined sale creates no order",
			setupMock: func(g *MockGateway, r *MockOrderRepository) {
				g.On("Sale", mock.Anything, saleOf(350)).Return(nil, declined)
			},
			expectedError: declined,
		},
		{
			name: "failed save voids the charge",
			setupMock: func(g *MockGateway, r *MockOrderRepository) {
				g.On("Sale", mock.Anything, saleOf(350)).Return(txn, nil)
				r.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
				g.On("Void", mock.Anything, "txn_1").Return(nil)
			},
			expectedError: assert.AnError,
			ordersCreated: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(MockGateway)
			repo := new(MockOrderRepository)
			tt.setupMock(gateway, repo)
			svc := NewCheckoutService(gateway, repo, zap.NewNop())

			order, err := svc.Pay(context.Background(), buyerID, "fake-nonce", testCart())

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, buyerID, order.BuyerID)
				assert.Equal(t, model.OrderStatusNotProcessed, order.Status)
				assert.Len(t, order.Products, 2)
				assert.True(t, order.Payment.Success)
				assert.Equal(t, "txn_1", order.Payment.TransactionID)
				assert.True(t, txn.Amount.Equal(order.Payment.Amount))
			}
			repo.AssertNumberOfCalls(t, "Create", tt.ordersCreated)
			gateway.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_PayRejectsIncompleteRequests(t *testing.T) {
	gateway := new(MockGateway)
	svc := NewCheckoutService(gateway, new(MockOrderRepository), zap.NewNop())

	_, err := svc.Pay(context.Background(), uuid.New(), "", testCart())
	_, ok := apperrors.AsValidation(err)
	assert.True(t, ok)

	_, err = svc.Pay(context.Background(), uuid.New(), "fake-nonce", nil)
	_, ok = apperrors.AsValidation(err)
	assert.True(t, ok)

	gateway.AssertNotCalled(t, "Sale", mock.Anything, mock.Anything)
}

func TestCheckoutService_ClientToken(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("ClientToken", mock.Anything).Return("client-token", nil).Once()
	gateway.On("ClientToken", mock.Anything).Return("", &payment.Error{Message: "down"}).Once()
	svc := NewCheckoutService(gateway, new(MockOrderRepository), zap.NewNop())

	token, err := svc.ClientToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "client-token", token)

	_, err = svc.ClientToken(context.Background())
	assert.Error(t, err)
}
