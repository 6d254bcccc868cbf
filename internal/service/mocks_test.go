package service

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/oauth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) (string, error) {
	args := m.Called(ctx, product)
	return args.String(0), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SetActive(ctx context.Context, productID string, active bool) error {
	return m.Called(ctx, productID, active).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListProductsResult), args.Error(1)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *MockProductRepository) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, params repository.UpdateOrderStatusParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockOrderRepository) UpdatePayment(ctx context.Context, params repository.UpdateOrderPaymentParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockOrderRepository) SetGatewayOrder(ctx context.Context, params repository.SetGatewayOrderParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) Create(ctx context.Context, seller *entity.Seller) (string, error) {
	args := m.Called(ctx, seller)
	return args.String(0), args.Error(1)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, sellerID string) (*entity.Seller, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetByUserID(ctx context.Context, userID string) (*entity.Seller, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Seller), args.Error(1)
}

func (m *MockSellerRepository) Update(ctx context.Context, params repository.UpdateSellerParams) (*entity.Seller, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Seller), args.Error(1)
}

func (m *MockSellerRepository) SetVerification(ctx context.Context, params repository.VerifySellerParams) (*entity.Seller, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Seller), args.Error(1)
}

func (m *MockSellerRepository) List(ctx context.Context, params repository.ListSellersParams) (*repository.ListSellersResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListSellersResult), args.Error(1)
}

type MockBargainRepository struct {
	mock.Mock
}

func (m *MockBargainRepository) Create(ctx context.Context, bargain *entity.Bargain) (string, error) {
	args := m.Called(ctx, bargain)
	return args.String(0), args.Error(1)
}

func (m *MockBargainRepository) GetByID(ctx context.Context, bargainID string) (*entity.Bargain, error) {
	args := m.Called(ctx, bargainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bargain), args.Error(1)
}

func (m *MockBargainRepository) FindOpen(ctx context.Context, productID, userID string) (*entity.Bargain, error) {
	args := m.Called(ctx, productID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bargain), args.Error(1)
}

func (m *MockBargainRepository) Update(ctx context.Context, bargain *entity.Bargain) error {
	return m.Called(ctx, bargain).Error(0)
}

func (m *MockBargainRepository) List(ctx context.Context, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListBargainsResult), args.Error(1)
}

func (m *MockBargainRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockChallengeRepository struct {
	mock.Mock
}

func (m *MockChallengeRepository) Create(ctx context.Context, challenge *entity.Challenge) (string, error) {
	args := m.Called(ctx, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockChallengeRepository) GetByID(ctx context.Context, challengeID string) (*entity.Challenge, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) AddResponse(ctx context.Context, challengeID string, response *entity.ChallengeResponse) (*entity.Challenge, error) {
	args := m.Called(ctx, challengeID, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Challenge), args.Error(1)
}

func (m *MockChallengeRepository) Update(ctx context.Context, challenge *entity.Challenge) error {
	return m.Called(ctx, challenge).Error(0)
}

func (m *MockChallengeRepository) List(ctx context.Context, params repository.ListChallengesParams) (*repository.ListChallengesResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListChallengesResult), args.Error(1)
}

func (m *MockChallengeRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error {
	return m.Called(ctx, cart, ttl).Error(0)
}

func (m *MockCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductCache) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	return m.Called(ctx, product, ttl).Error(0)
}

func (m *MockProductCache) Delete(ctx context.Context, productIDs ...string) error {
	args := make([]interface{}, 0, len(productIDs)+1)
	args = append(args, ctx)
	for _, id := range productIDs {
		args = append(args, id)
	}
	return m.Called(args...).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	return m.Called(ctx, subject, message).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderPlaced(ctx context.Context, order *entity.Order) {
	m.Called(ctx, order)
}

func (m *MockNotifier) OrderStatusChanged(ctx context.Context, order *entity.Order, notes string) {
	m.Called(ctx, order, notes)
}

func (m *MockNotifier) PaymentReceived(ctx context.Context, order *entity.Order) {
	m.Called(ctx, order)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.GatewayOrder), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return m.Called(gatewayOrderID, paymentID, signature).Bool(0)
}

func (m *MockPaymentGateway) KeyID() string {
	return m.Called().String(0)
}

func (m *MockPaymentGateway) Currency() string {
	return m.Called().String(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, actor Actor, orderID string) (*entity.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) ListSeller(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) ListAll(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListOrdersResult), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor Actor, orderID, status, notes string) (*entity.Order, error) {
	args := m.Called(ctx, actor, orderID, status, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, orderID, reason string) (*entity.Order, error) {
	args := m.Called(ctx, userID, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

// passthroughTx runs fn directly, standing in for a Mongo session.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*entity.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	return m.user(m.Called(ctx, userID))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return m.user(m.Called(ctx, googleID))
}

func (m *MockUserRepository) LinkGoogle(ctx context.Context, params repository.LinkGoogleParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockUserRepository) SetSeller(ctx context.Context, userID string, isSeller bool) error {
	return m.Called(ctx, userID, isSeller).Error(0)
}

type MockOAuthStateStore struct {
	mock.Mock
}

func (m *MockOAuthStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return m.Called(ctx, state, ttl).Error(0)
}

func (m *MockOAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, code string) (*oauth.GoogleProfile, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.GoogleProfile), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	args := m.Called(ctx, filename, data)
	return args.String(0), args.Error(1)
}
