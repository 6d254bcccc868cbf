package router

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, userID string, in service.CreateProductInput, uploads []service.ImageUpload) (*entity.Product, error) {
	args := m.Called(ctx, userID, in, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, userID, productID string, in service.UpdateProductInput, uploads []service.ImageUpload) (*entity.Product, error) {
	args := m.Called(ctx, userID, productID, in, uploads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, userID, productID string) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *MockProductService) Get(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListProductsResult), args.Error(1)
}

func (m *MockProductService) ListMine(ctx context.Context, userID string, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListProductsResult), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*entity.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) list(args mock.Arguments) (*repository.ListOrdersResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, userID string, in service.CreateOrderInput) (*entity.Order, error) {
	return m.order(m.Called(ctx, userID, in))
}

func (m *MockOrderService) Get(ctx context.Context, actor service.Actor, orderID string) (*entity.Order, error) {
	return m.order(m.Called(ctx, actor, orderID))
}

func (m *MockOrderService) ListMine(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	return m.list(m.Called(ctx, userID, params))
}

func (m *MockOrderService) ListSeller(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	return m.list(m.Called(ctx, userID, params))
}

func (m *MockOrderService) ListAll(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	return m.list(m.Called(ctx, params))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor service.Actor, orderID, status, notes string) (*entity.Order, error) {
	return m.order(m.Called(ctx, actor, orderID, status, notes))
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, orderID, reason string) (*entity.Order, error) {
	return m.order(m.Called(ctx, userID, orderID, reason))
}

type MockBargainService struct {
	mock.Mock
}

func (m *MockBargainService) bargain(args mock.Arguments) (*entity.Bargain, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bargain), args.Error(1)
}

func (m *MockBargainService) Create(ctx context.Context, userID, productID string, offer float64, message string) (*entity.Bargain, error) {
	return m.bargain(m.Called(ctx, userID, productID, offer, message))
}

func (m *MockBargainService) SellerRespond(ctx context.Context, userID, bargainID, action string, counterOffer *float64, message string) (*entity.Bargain, error) {
	return m.bargain(m.Called(ctx, userID, bargainID, action, counterOffer, message))
}

func (m *MockBargainService) BuyerRespond(ctx context.Context, userID, bargainID, action, message string) (*entity.Bargain, error) {
	return m.bargain(m.Called(ctx, userID, bargainID, action, message))
}

func (m *MockBargainService) Get(ctx context.Context, actor service.Actor, bargainID string) (*entity.Bargain, error) {
	return m.bargain(m.Called(ctx, actor, bargainID))
}

func (m *MockBargainService) ListMine(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListBargainsResult), args.Error(1)
}

func (m *MockBargainService) ListSeller(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListBargainsResult), args.Error(1)
}

type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) seller(args mock.Arguments) (*entity.Seller, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Seller), args.Error(1)
}

func (m *MockSellerRepository) Create(ctx context.Context, seller *entity.Seller) (string, error) {
	args := m.Called(ctx, seller)
	return args.String(0), args.Error(1)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, sellerID string) (*entity.Seller, error) {
	return m.seller(m.Called(ctx, sellerID))
}

func (m *MockSellerRepository) GetByUserID(ctx context.Context, userID string) (*entity.Seller, error) {
	return m.seller(m.Called(ctx, userID))
}

func (m *MockSellerRepository) Update(ctx context.Context, params repository.UpdateSellerParams) (*entity.Seller, error) {
	return m.seller(m.Called(ctx, params))
}

func (m *MockSellerRepository) SetVerification(ctx context.Context, params repository.VerifySellerParams) (*entity.Seller, error) {
	return m.seller(m.Called(ctx, params))
}

func (m *MockSellerRepository) List(ctx context.Context, params repository.ListSellersParams) (*repository.ListSellersResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListSellersResult), args.Error(1)
}
