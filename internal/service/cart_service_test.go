package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	cartRepo *MockCartRepository
	products *MockProductRepository
	cache    *MockProductCache
	orders   *MockOrderService
	svc      CartService
}

const testCartTTL = 24 * time.Hour

func newCartFixture() *cartFixture {
	f := &cartFixture{
		cartRepo: new(MockCartRepository),
		products: new(MockProductRepository),
		cache:    new(MockProductCache),
		orders:   new(MockOrderService),
	}
	productSvc := NewProductService(f.products, new(MockSellerRepository), f.cache, nil, storage.Processor{},
		ProductServiceConfig{CacheTTL: time.Minute, MaxFiles: 5}, logger.NewNop())
	f.svc = NewCartService(f.cartRepo, productSvc, f.orders, logger.NewNop(), CartServiceConfig{CartTTL: testCartTTL})
	return f
}

func (f *cartFixture) cached(p *entity.Product) {
	f.cache.On("Get", mock.Anything, p.ID).Return(p, nil)
}

func TestCartService_AddItem_NewItem(t *testing.T) {
	f := newCartFixture()
	f.cached(testProduct("p1", 5))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(entity.NewCart("buyer-1"), nil).Once()
	f.cartRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *entity.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].Quantity == 2 && c.Items[0].SellerID == "seller-1"
	}), testCartTTL).Return(nil).Once()

	view, err := f.svc.AddItem(context.Background(), "buyer-1", "p1", 2)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1800.0, view.Items[0].LineTotal)
	assert.Equal(t, 1800.0, view.Subtotal)
	require.Len(t, view.Sellers, 1)
	assert.Equal(t, entity.CartSellerGroup{SellerID: "seller-1", Items: 1, Subtotal: 1800}, view.Sellers[0])
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_AddItem_CumulativeQuantityChecksStock(t *testing.T) {
	f := newCartFixture()
	f.cached(testProduct("p1", 3))
	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 2))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(cart, nil).Once()

	_, err := f.svc.AddItem(context.Background(), "buyer-1", "p1", 2)

	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_GetCart_SkipsUnavailableProducts(t *testing.T) {
	f := newCartFixture()
	f.cached(testProduct("p1", 3))
	f.cache.On("Get", mock.Anything, "gone").Return(nil, repository.ErrNotFound)
	f.products.On("GetByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 1))
	require.NoError(t, cart.Add("gone", "seller-1", 1))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(cart, nil).Once()

	view, err := f.svc.GetCart(context.Background(), "buyer-1")

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p1", view.Items[0].ProductID)
	assert.Equal(t, 900.0, view.Subtotal)
}

func TestCartService_UpdateItemQuantity_MissingItem(t *testing.T) {
	f := newCartFixture()
	f.cached(testProduct("p1", 3))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(entity.NewCart("buyer-1"), nil).Once()

	_, err := f.svc.UpdateItemQuantity(context.Background(), "buyer-1", "p1", 1)

	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCartService_Checkout_PlacesOrderAndClearsCart(t *testing.T) {
	f := newCartFixture()
	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 2))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(cart, nil).Once()

	delivery := entity.DeliveryInfo{Option: entity.DeliverySellerPickup}
	expected := CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 2}},
		PaymentMethod: "cod",
		Delivery:      delivery,
	}
	f.orders.On("Create", mock.Anything, "buyer-1", expected).Return(&entity.Order{ID: "order-9", Total: 1800}, nil).Once()
	f.cartRepo.On("DeleteByUserID", mock.Anything, "buyer-1").Return(nil).Once()

	order, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{PaymentMethod: "cod", Delivery: delivery})

	require.NoError(t, err)
	assert.Equal(t, "order-9", order.ID)
	f.orders.AssertExpectations(t)
	f.cartRepo.AssertExpectations(t)
}

func twoSellerCart(t *testing.T) *entity.Cart {
	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 2))
	require.NoError(t, cart.Add("p7", "seller-2", 1))
	return cart
}

func TestCartService_Checkout_SeveralSellersNeedsChoice(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(twoSellerCart(t), nil).Once()

	_, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{PaymentMethod: "cod"})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_Checkout_OneSellerKeepsTheRest(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(twoSellerCart(t), nil).Once()
	delivery := entity.DeliveryInfo{Option: entity.DeliveryMetro, MetroStation: "Dadar"}
	f.orders.On("Create", mock.Anything, "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p7", Quantity: 1}},
		PaymentMethod: "online",
		Delivery:      delivery,
	}).Return(&entity.Order{ID: "order-3"}, nil).Once()
	f.cartRepo.On("Save", mock.Anything, mock.MatchedBy(func(c *entity.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].ProductID == "p1"
	}), testCartTTL).Return(nil).Once()

	order, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{SellerID: "seller-2", PaymentMethod: "online", Delivery: delivery})

	require.NoError(t, err)
	assert.Equal(t, "order-3", order.ID)
	f.cartRepo.AssertExpectations(t)
	f.cartRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestCartService_Checkout_UnknownSeller(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(twoSellerCart(t), nil).Once()

	_, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{SellerID: "seller-9", PaymentMethod: "cod"})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCartService_Checkout_KeepsCartWhenOrderFails(t *testing.T) {
	f := newCartFixture()
	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 2))
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(cart, nil).Once()
	f.orders.On("Create", mock.Anything, "buyer-1", mock.Anything).Return(nil, apperror.Conflict("insufficient stock")).Once()

	_, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{PaymentMethod: "cod", Delivery: entity.DeliveryInfo{Option: entity.DeliverySellerPickup}})

	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.cartRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("GetByUserID", mock.Anything, "buyer-1").Return(entity.NewCart("buyer-1"), nil).Once()

	_, err := f.svc.Checkout(context.Background(), "buyer-1", CheckoutInput{PaymentMethod: "cod"})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestCartService_ClearCart_StoreFailure(t *testing.T) {
	f := newCartFixture()
	f.cartRepo.On("DeleteByUserID", mock.Anything, "buyer-1").Return(errors.New("redis down")).Once()

	err := f.svc.ClearCart(context.Background(), "buyer-1")

	assert.True(t, apperror.Is(err, apperror.KindInternal))
}
