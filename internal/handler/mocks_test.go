package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storefront/internal/auth"
	"storefront/internal/blob"
	"storefront/internal/model"
	"storefront/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	return m.Called(ctx, email, answer, newPassword).Error(0)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in service.ProfileInput) (*model.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*model.Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) product(args mock.Arguments) (*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) products(args mock.Arguments) ([]model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in service.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, in))
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, in service.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, id, in))
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Latest(ctx context.Context) ([]model.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *MockProductService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return m.product(m.Called(ctx, slug))
}

func (m *MockProductService) Photo(ctx context.Context, id uuid.UUID) (*blob.Blob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Blob), args.Error(1)
}

func (m *MockProductService) Filter(ctx context.Context, in service.FilterInput) ([]model.Product, error) {
	return m.products(m.Called(ctx, in))
}

func (m *MockProductService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductService) Page(ctx context.Context, page int) ([]model.Product, error) {
	return m.products(m.Called(ctx, page))
}

func (m *MockProductService) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	return m.products(m.Called(ctx, keyword))
}

func (m *MockProductService) Related(ctx context.Context, productID, categoryID uuid.UUID) ([]model.Product, error) {
	return m.products(m.Called(ctx, productID, categoryID))
}

func (m *MockProductService) ByCategory(ctx context.Context, slug string) (*model.Category, []model.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Category), args.Get(1).([]model.Product), args.Error(2)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) BuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) AllOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) SetStatus(ctx context.Context, orderID uuid.UUID, status string) (*model.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) ClientToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutService) Pay(ctx context.Context, buyerID uuid.UUID, nonce string, cart []model.CartItem) (*model.Order, error) {
	args := m.Called(ctx, buyerID, nonce, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
