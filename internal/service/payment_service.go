package service

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type GatewayCheckout struct {
	OrderID        string  `json:"orderId"`
	GatewayOrderID string  `json:"gatewayOrderId"`
	Amount         float64 `json:"amount"`
	AmountMinor    int64   `json:"amountMinor"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"keyId"`
}

type VerifyPaymentInput struct {
	OrderID        string
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type PaymentService interface {
	CreateGatewayOrder(ctx context.Context, userID, orderID string, amount *float64) (*GatewayCheckout, error)
	Verify(ctx context.Context, userID string, in VerifyPaymentInput) (*entity.Order, error)
}

type paymentService struct {
	orders       repository.OrderRepository
	sellers      repository.SellerRepository
	gateway      gateway.PaymentGateway
	msgPublisher nats.MessagePublisher
	notifier     Notifier
	metrics      *metrics.MetricsManager
	log          logger.Logger
}

func NewPaymentService(
	orders repository.OrderRepository,
	sellers repository.SellerRepository,
	gw gateway.PaymentGateway,
	msgPublisher nats.MessagePublisher,
	notifier Notifier,
	metricsManager *metrics.MetricsManager,
	log logger.Logger,
) PaymentService {
	return &paymentService{
		orders:       orders,
		sellers:      sellers,
		gateway:      gw,
		msgPublisher: msgPublisher,
		notifier:     notifier,
		metrics:      metricsManager,
		log:          log.Named("PaymentService"),
	}
}

func (s *paymentService) buyerOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order")
	}
	if order.UserID != userID {
		s.log.Warnf("User %s attempted to pay for order %s of user %s", userID, orderID, order.UserID)
		return nil, apperror.Forbidden("access denied to this order")
	}
	return order, nil
}

func (s *paymentService) CreateGatewayOrder(ctx context.Context, userID, orderID string, amount *float64) (*GatewayCheckout, error) {
	s.log.Infof("Creating gateway order for order %s", orderID)
	order, err := s.buyerOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case order.PaymentMethod != entity.PaymentOnline:
		return nil, apperror.Conflict("order is not paid online")
	case order.PaymentStatus == entity.PaymentPaid:
		return nil, apperror.Conflict("order is already paid")
	case order.Status == entity.StatusCancelled:
		return nil, apperror.Conflict("order is cancelled")
	}
	if amount != nil && !pricing.Equal(*amount, order.Total) {
		return nil, apperror.Field("amount", "amount does not match the order total")
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{Receipt: order.ID, Amount: order.Total})
	if err != nil {
		s.log.Errorf("Gateway order creation failed for order %s: %v", order.ID, err)
		return nil, apperror.Gateway("payment gateway is unavailable", err)
	}

	if err := s.orders.SetGatewayOrder(ctx, repository.SetGatewayOrderParams{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		Version:        order.Version,
	}); err != nil {
		return nil, storeError(err, "order")
	}

	return &GatewayCheckout{
		OrderID:        order.ID,
		GatewayOrderID: gwOrder.ID,
		Amount:         order.Total,
		AmountMinor:    pricing.MinorUnits(order.Total),
		Currency:       s.gateway.Currency(),
		KeyID:          s.gateway.KeyID(),
	}, nil
}

func (s *paymentService) Verify(ctx context.Context, userID string, in VerifyPaymentInput) (*entity.Order, error) {
	s.log.Infof("Verifying payment %s for order %s", in.PaymentID, in.OrderID)
	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, apperror.Validation("gatewayOrderId, paymentId and signature are required", nil)
	}
	order, err := s.buyerOrder(ctx, userID, in.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Payment.GatewayOrderID == "" || order.Payment.GatewayOrderID != in.GatewayOrderID {
		s.metrics.PaymentsVerifiedTotal.WithLabelValues("order_mismatch").Inc()
		s.log.Warnf("Gateway order %s does not belong to order %s", in.GatewayOrderID, order.ID)
		return nil, apperror.PaymentVerification("payment does not belong to this order")
	}
	if !s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		s.metrics.PaymentsVerifiedTotal.WithLabelValues("invalid_signature").Inc()
		s.log.Warnf("Invalid payment signature for order %s", order.ID)
		return nil, apperror.PaymentVerification("payment signature verification failed")
	}

	if order.PaymentStatus == entity.PaymentPaid {
		s.metrics.PaymentsVerifiedTotal.WithLabelValues("already_paid").Inc()
		return order, nil
	}

	entry, err := order.MarkPaid(entity.PaymentDetails{
		GatewayOrderID: in.GatewayOrderID,
		PaymentID:      in.PaymentID,
		Signature:      in.Signature,
	})
	if err != nil {
		return nil, apperror.Conflict(err.Error())
	}
	if err := s.orders.UpdatePayment(ctx, repository.UpdateOrderPaymentParams{
		OrderID:       order.ID,
		Payment:       order.Payment,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		Entry:         entry,
		Version:       order.Version,
	}); err != nil {
		s.log.Errorf("Failed to record payment for order %s: %v", order.ID, err)
		return nil, storeError(err, "order")
	}
	order.Version++
	s.metrics.PaymentsVerifiedTotal.WithLabelValues("paid").Inc()

	sellerUserID := ""
	if seller, err := s.sellers.GetByID(ctx, order.SellerID); err == nil {
		sellerUserID = seller.UserID
	}
	if err := s.msgPublisher.Publish(ctx, SubjectOrderPaid, newOrderEvent(order, sellerUserID, "Payment received")); err != nil {
		s.log.Warnf("Failed to publish %s for order %s: %v", SubjectOrderPaid, order.ID, err)
	}
	s.notifier.PaymentReceived(ctx, order)
	s.log.Infof("Order %s paid with payment %s", order.ID, in.PaymentID)
	return order, nil
}
