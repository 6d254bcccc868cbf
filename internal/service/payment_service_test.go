package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	orders    *MockOrderRepository
	sellers   *MockSellerRepository
	gateway   *MockPaymentGateway
	publisher *MockPublisher
	notifier  *MockNotifier
	metrics   *metrics.MetricsManager
	svc       PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:    new(MockOrderRepository),
		sellers:   new(MockSellerRepository),
		gateway:   new(MockPaymentGateway),
		publisher: new(MockPublisher),
		notifier:  new(MockNotifier),
		metrics:   metrics.NewMetricsManager("test"),
	}
	f.svc = NewPaymentService(f.orders, f.sellers, f.gateway, f.publisher, f.notifier, f.metrics, logger.NewNop())
	return f
}

func onlineOrderWithGateway(t *testing.T) *entity.Order {
	order := pendingOrder(t)
	order.Payment.GatewayOrderID = "gw_1"
	return order
}

func TestPaymentService_CreateGatewayOrder(t *testing.T) {
	f := newPaymentFixture()
	order := pendingOrder(t)

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()
	f.gateway.On("CreateOrder", mock.Anything, gateway.CreateOrderRequest{Receipt: "order-1", Amount: 1800}).
		Return(&gateway.GatewayOrder{ID: "gw_1", Amount: 180000, Currency: "INR"}, nil).Once()
	f.orders.On("SetGatewayOrder", mock.Anything, repository.SetGatewayOrderParams{OrderID: "order-1", GatewayOrderID: "gw_1", Version: 1}).Return(nil).Once()
	f.gateway.On("Currency").Return("INR")
	f.gateway.On("KeyID").Return("key_test")

	checkout, err := f.svc.CreateGatewayOrder(context.Background(), "buyer-1", "order-1", nil)

	require.NoError(t, err)
	assert.Equal(t, "gw_1", checkout.GatewayOrderID)
	assert.Equal(t, int64(180000), checkout.AmountMinor)
	assert.Equal(t, "key_test", checkout.KeyID)
	f.orders.AssertExpectations(t)
}

func TestPaymentService_CreateGatewayOrder_GatewayDown(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", mock.Anything, "order-1").Return(pendingOrder(t), nil).Once()
	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := f.svc.CreateGatewayOrder(context.Background(), "buyer-1", "order-1", nil)

	assert.True(t, apperror.Is(err, apperror.KindGateway))
	f.orders.AssertNotCalled(t, "SetGatewayOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_CreateGatewayOrder_RejectsWrongAmount(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", mock.Anything, "order-1").Return(pendingOrder(t), nil).Once()
	amount := 1700.0

	_, err := f.svc.CreateGatewayOrder(context.Background(), "buyer-1", "order-1", &amount)

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_MarksOrderPaid(t *testing.T) {
	f := newPaymentFixture()
	order := onlineOrderWithGateway(t)

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()
	f.gateway.On("VerifySignature", "gw_1", "pay_1", "good-sig").Return(true).Once()
	f.orders.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p repository.UpdateOrderPaymentParams) bool {
		return p.PaymentStatus == entity.PaymentPaid && p.Status == entity.StatusConfirmed && p.Payment.PaymentID == "pay_1" && p.Version == 1
	})).Return(nil).Once()
	f.sellers.On("GetByID", mock.Anything, "seller-1").Return(testSeller(), nil).Once()
	f.publisher.On("Publish", mock.Anything, SubjectOrderPaid, mock.MatchedBy(func(ev OrderEvent) bool {
		return ev.PaymentStatus == entity.PaymentPaid && ev.SellerUserID == "seller-user"
	})).Return(nil).Once()
	f.notifier.On("PaymentReceived", mock.Anything, order).Once()

	got, err := f.svc.Verify(context.Background(), "buyer-1", VerifyPaymentInput{
		OrderID: "order-1", GatewayOrderID: "gw_1", PaymentID: "pay_1", Signature: "good-sig",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, entity.StatusConfirmed, got.Status)
	assert.NotNil(t, got.Payment.PaidAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsVerifiedTotal.WithLabelValues("paid")))
	f.orders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPaymentService_Verify_TamperedSignatureLeavesOrderUnpaid(t *testing.T) {
	f := newPaymentFixture()
	order := onlineOrderWithGateway(t)

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()
	f.gateway.On("VerifySignature", "gw_1", "pay_1", "forged").Return(false).Once()

	_, err := f.svc.Verify(context.Background(), "buyer-1", VerifyPaymentInput{
		OrderID: "order-1", GatewayOrderID: "gw_1", PaymentID: "pay_1", Signature: "forged",
	})

	assert.True(t, apperror.Is(err, apperror.KindPaymentVerification))
	assert.Equal(t, entity.PaymentPending, order.PaymentStatus)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsVerifiedTotal.WithLabelValues("invalid_signature")))
	f.orders.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_RejectsForeignGatewayOrder(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", mock.Anything, "order-1").Return(onlineOrderWithGateway(t), nil).Once()

	_, err := f.svc.Verify(context.Background(), "buyer-1", VerifyPaymentInput{
		OrderID: "order-1", GatewayOrderID: "gw_other", PaymentID: "pay_1", Signature: "sig",
	})

	assert.True(t, apperror.Is(err, apperror.KindPaymentVerification))
	f.gateway.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_IsIdempotentOncePaid(t *testing.T) {
	f := newPaymentFixture()
	order := onlineOrderWithGateway(t)
	order.PaymentStatus = entity.PaymentPaid

	f.orders.On("GetByID", mock.Anything, "order-1").Return(order, nil).Once()
	f.gateway.On("VerifySignature", "gw_1", "pay_1", "good-sig").Return(true).Once()

	got, err := f.svc.Verify(context.Background(), "buyer-1", VerifyPaymentInput{
		OrderID: "order-1", GatewayOrderID: "gw_1", PaymentID: "pay_1", Signature: "good-sig",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, got.PaymentStatus)
	f.orders.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything)
}

func TestPaymentService_Verify_OtherBuyerForbidden(t *testing.T) {
	f := newPaymentFixture()
	f.orders.On("GetByID", mock.Anything, "order-1").Return(onlineOrderWithGateway(t), nil).Once()

	_, err := f.svc.Verify(context.Background(), "someone", VerifyPaymentInput{
		OrderID: "order-1", GatewayOrderID: "gw_1", PaymentID: "pay_1", Signature: "sig",
	})

	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}
