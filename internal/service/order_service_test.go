package service

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders     *MockOrderRepository
	products   *MockProductRepository
	sellers    *MockSellerRepository
	bargains   *MockBargainRepository
	challenges *MockChallengeRepository
	cache      *MockProductCache
	publisher  *MockPublisher
	notifier   *MockNotifier
	metrics    *metrics.MetricsManager
	svc        OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     new(MockOrderRepository),
		products:   new(MockProductRepository),
		sellers:    new(MockSellerRepository),
		bargains:   new(MockBargainRepository),
		challenges: new(MockChallengeRepository),
		cache:      new(MockProductCache),
		publisher:  new(MockPublisher),
		notifier:   new(MockNotifier),
		metrics:    metrics.NewMetricsManager("test"),
	}
	f.svc = NewOrderService(f.orders, f.products, f.sellers, f.bargains, f.challenges, f.cache,
		passthroughTx{}, f.publisher, f.notifier, f.metrics, logger.NewNop())
	return f
}

func testProduct(id string, stock int) *entity.Product {
	return &entity.Product{
		ID:              id,
		SellerID:        "seller-1",
		Name:            "Brass lamp " + id,
		BasePrice:       1000,
		PriceDiscount:   10,
		SellingPrice:    900,
		Stock:           stock,
		AllowBargaining: true,
		IsActive:        true,
		Version:         1,
	}
}

func testSeller() *entity.Seller {
	return &entity.Seller{ID: "seller-1", UserID: "seller-user", BusinessName: "Lamps", VerificationStatus: entity.VerificationApproved}
}

func TestOrderService_Create_PickupOrderTotalsAndReservesStock(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()
	price := 900.0

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()
	f.products.On("ReserveStock", mock.Anything, "p1", 2).Return(nil).Once()
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Order).ID = "order-1" }).
		Return("order-1", nil).Once()
	f.cache.On("Delete", mock.Anything, "p1").Return(nil).Once()
	f.sellers.On("GetByID", mock.Anything, "seller-1").Return(testSeller(), nil).Once()
	f.publisher.On("Publish", mock.Anything, SubjectOrderCreated, mock.MatchedBy(func(ev OrderEvent) bool {
		return ev.OrderID == "order-1" && ev.SellerUserID == "seller-user" && ev.Total == 1800
	})).Return(nil).Once()
	f.notifier.On("OrderPlaced", mock.Anything, mock.AnythingOfType("*entity.Order")).Once()

	order, err := f.svc.Create(ctx, "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 2, FinalPrice: &price}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliverySellerPickup},
	})

	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 1800.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DeliveryCharge)
	assert.Equal(t, 1800.0, order.Total)
	assert.Equal(t, entity.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 900.0, order.Items[0].FinalPrice)

	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestOrderService_Create_ReleasesReservedStockWhenLaterItemFails(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()
	f.products.On("GetByID", mock.Anything, "p2").Return(testProduct("p2", 3), nil).Once()
	f.products.On("ReserveStock", mock.Anything, "p1", 2).Return(nil).Once()
	f.products.On("ReserveStock", mock.Anything, "p2", 3).Return(repository.ErrInsufficientStock).Once()
	f.products.On("ReleaseStock", mock.Anything, "p1", 2).Return(nil).Once()

	order, err := f.svc.Create(ctx, "buyer-1", CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
		PaymentMethod: "online",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliveryMetro, MetroStation: "Dadar"},
	})

	assert.Nil(t, order)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.products.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_RejectsStalePriceWithoutTouchingStock(t *testing.T) {
	f := newOrderFixture()
	stale := 950.0

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()

	_, err := f.svc.Create(context.Background(), "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 1, FinalPrice: &stale}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliverySellerPickup},
	})

	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.products.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_RejectsQuantityAboveStock(t *testing.T) {
	f := newOrderFixture()

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 1), nil).Once()

	_, err := f.svc.Create(context.Background(), "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 2}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliverySellerPickup},
	})

	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.products.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_UsesAcceptedBargainPrice(t *testing.T) {
	f := newOrderFixture()
	final := 850.0
	bargain := &entity.Bargain{ID: "b1", ProductID: "p1", UserID: "buyer-1", SellerID: "seller-1", Status: entity.BargainAccepted, FinalPrice: &final}

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()
	f.bargains.On("GetByID", mock.Anything, "b1").Return(bargain, nil).Once()
	f.products.On("ReserveStock", mock.Anything, "p1", 1).Return(nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return("order-2", nil).Once()
	f.cache.On("Delete", mock.Anything, "p1").Return(nil)
	f.sellers.On("GetByID", mock.Anything, "seller-1").Return(testSeller(), nil)
	f.publisher.On("Publish", mock.Anything, SubjectOrderCreated, mock.Anything).Return(nil)
	f.notifier.On("OrderPlaced", mock.Anything, mock.Anything)

	order, err := f.svc.Create(context.Background(), "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 1, BargainID: "b1"}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliveryMetro, MetroStation: "Andheri"},
	})

	require.NoError(t, err)
	assert.Equal(t, 850.0, order.Items[0].FinalPrice)
	assert.Equal(t, 900.0, order.Items[0].Price)
	assert.Equal(t, 900.0, order.Total)
}

func TestOrderService_Create_RejectsBargainOfAnotherBuyer(t *testing.T) {
	f := newOrderFixture()
	final := 850.0
	bargain := &entity.Bargain{ID: "b1", ProductID: "p1", UserID: "someone-else", Status: entity.BargainAccepted, FinalPrice: &final}

	f.sellers.On("GetByUserID", mock.Anything, "buyer-1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()
	f.bargains.On("GetByID", mock.Anything, "b1").Return(bargain, nil).Once()

	_, err := f.svc.Create(context.Background(), "buyer-1", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 1, BargainID: "b1"}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliverySellerPickup},
	})

	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestOrderService_Create_RejectsOwnProduct(t *testing.T) {
	f := newOrderFixture()

	f.sellers.On("GetByUserID", mock.Anything, "seller-user").Return(testSeller(), nil).Once()
	f.products.On("GetByID", mock.Anything, "p1").Return(testProduct("p1", 5), nil).Once()

	_, err := f.svc.Create(context.Background(), "seller-user", CreateOrderInput{
		Items:         []OrderItemInput{{ProductID: "p1", Quantity: 1}},
		PaymentMethod: "cod",
		Delivery:      entity.DeliveryInfo{Option: entity.DeliverySellerPickup},
	})

	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestOrderService_Create_ValidatesRequest(t *testing.T) {
	f := newOrderFixture()

	tests := []struct {
		name string
		in   CreateOrderInput
	}{
		{"no items", CreateOrderInput{PaymentMethod: "cod", Delivery: entity.DeliveryInfo{Option: entity.DeliverySellerPickup}}},
		{"bad payment method", CreateOrderInput{Items: []OrderItemInput{{ProductID: "p1", Quantity: 1}}, PaymentMethod: "barter", Delivery: entity.DeliveryInfo{Option: entity.DeliverySellerPickup}}},
		{"metro without station", CreateOrderInput{Items: []OrderItemInput{{ProductID: "p1", Quantity: 1}}, PaymentMethod: "cod", Delivery: entity.DeliveryInfo{Option: entity.DeliveryMetro}}},
		{"zero quantity", CreateOrderInput{Items: []OrderItemInput{{ProductID: "p1", Quantity: 0}}, PaymentMethod: "cod", Delivery: entity.DeliveryInfo{Option: entity.DeliverySellerPickup}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), "buyer-1", tt.in)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
	f.products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func pendingOrder(t *testing.T) *entity.Order {
	item := entity.OrderItem{ProductID: "p1", Name: "Lamp", Quantity: 2, Price: 900, FinalPrice: 900}
	order, err := entity.NewOrder("buyer-1", "seller-1", []entity.OrderItem{item}, entity.SellerPickup{}, entity.PaymentOnline)
	require.NoError(t, err)
	order.ID = "order-1"
	return order
}

func TestOrderService_Cancel_RestocksItems(t *testing.T) {
	f := newOrderFixture()
	order := pendingOrder(t)

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()
	f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(p repository.UpdateOrderStatusParams) bool {
		return p.Status == entity.StatusCancelled && p.Version == 1 && p.CancelReason == "changed my mind"
	})).Return(nil).Once()
	f.products.On("ReleaseStock", mock.Anything, "p1", 2).Return(nil).Once()
	f.cache.On("Delete", mock.Anything, "p1").Return(nil).Once()
	f.sellers.On("GetByID", mock.Anything, "seller-1").Return(testSeller(), nil).Once()
	f.publisher.On("Publish", mock.Anything, SubjectOrderStatusUpdated, mock.Anything).Return(nil).Once()
	f.notifier.On("OrderStatusChanged", mock.Anything, order, "changed my mind").Once()

	got, err := f.svc.Cancel(context.Background(), "buyer-1", "order-1", "changed my mind")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Equal(t, 2, got.Version)
	f.orders.AssertExpectations(t)
	f.products.AssertExpectations(t)
}

func TestOrderService_Cancel_OnlyBuyerWhileEarly(t *testing.T) {
	f := newOrderFixture()
	order := pendingOrder(t)
	order.Status = entity.StatusShipped

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil)

	_, err := f.svc.Cancel(context.Background(), "intruder", "order-1", "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.svc.Cancel(context.Background(), "buyer-1", "order-1", "")
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_SellerOnly(t *testing.T) {
	f := newOrderFixture()
	order := pendingOrder(t)

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil)
	f.sellers.On("GetByUserID", mock.Anything, "other-user").Return(&entity.Seller{ID: "seller-2", UserID: "other-user"}, nil).Once()

	_, err := f.svc.UpdateStatus(context.Background(), Actor{UserID: "other-user", Role: entity.RoleUser}, "order-1", "confirmed", "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	f.sellers.On("GetByUserID", mock.Anything, "seller-user").Return(testSeller(), nil).Once()
	f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(p repository.UpdateOrderStatusParams) bool {
		return p.Status == entity.StatusConfirmed && p.Entry.By == "seller-user"
	})).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, SubjectOrderStatusUpdated, mock.MatchedBy(func(ev OrderEvent) bool {
		return ev.SellerUserID == "seller-user" && ev.Status == entity.StatusConfirmed
	})).Return(nil).Once()
	f.notifier.On("OrderStatusChanged", mock.Anything, order, "packed").Once()

	got, err := f.svc.UpdateStatus(context.Background(), Actor{UserID: "seller-user", Role: entity.RoleUser}, "order-1", "confirmed", "packed")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, got.Status)
	f.products.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_RejectsBackwardTransition(t *testing.T) {
	f := newOrderFixture()
	order := pendingOrder(t)
	order.Status = entity.StatusShipped

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil)

	_, err := f.svc.UpdateStatus(context.Background(), Actor{UserID: "admin", Role: entity.RoleAdmin}, "order-1", "confirmed", "")
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestOrderService_Get_AccessRules(t *testing.T) {
	f := newOrderFixture()
	order := pendingOrder(t)
	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil)
	f.sellers.On("GetByUserID", mock.Anything, "stranger").Return(nil, repository.ErrNotFound)
	f.sellers.On("GetByUserID", mock.Anything, "seller-user").Return(testSeller(), nil)

	_, err := f.svc.Get(context.Background(), Actor{UserID: "buyer-1"}, "order-1")
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), Actor{UserID: "seller-user"}, "order-1")
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), Actor{UserID: "root", Role: entity.RoleAdmin}, "order-1")
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), Actor{UserID: "stranger"}, "order-1")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}
