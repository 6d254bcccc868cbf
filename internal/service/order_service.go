package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type OrderItemInput struct {
	ProductID   string
	Quantity    int
	FinalPrice  *float64
	BargainID   string
	ChallengeID string
}

type CreateOrderInput struct {
	Items         []OrderItemInput
	PaymentMethod string
	Delivery      entity.DeliveryInfo
}

type OrderService interface {
	Create(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error)
	Get(ctx context.Context, actor Actor, orderID string) (*entity.Order, error)
	ListMine(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error)
	ListSeller(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error)
	ListAll(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID, status, notes string) (*entity.Order, error)
	Cancel(ctx context.Context, userID, orderID, reason string) (*entity.Order, error)
}

type orderService struct {
	orders       repository.OrderRepository
	products     repository.ProductRepository
	sellers      repository.SellerRepository
	bargains     repository.BargainRepository
	challenges   repository.ChallengeRepository
	cache        repository.ProductCache
	tx           repository.TxManager
	msgPublisher nats.MessagePublisher
	notifier     Notifier
	metrics      *metrics.MetricsManager
	log          logger.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	bargains repository.BargainRepository,
	challenges repository.ChallengeRepository,
	cache repository.ProductCache,
	tx repository.TxManager,
	msgPublisher nats.MessagePublisher,
	notifier Notifier,
	metricsManager *metrics.MetricsManager,
	log logger.Logger,
) OrderService {
	return &orderService{
		orders:       orders,
		products:     products,
		sellers:      sellers,
		bargains:     bargains,
		challenges:   challenges,
		cache:        cache,
		tx:           tx,
		msgPublisher: msgPublisher,
		notifier:     notifier,
		metrics:      metricsManager,
		log:          log.Named("OrderService"),
	}
}

func (s *orderService) fail(reason string, err error) error {
	s.metrics.OrderFailuresTotal.WithLabelValues(reason).Inc()
	return err
}

func (s *orderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*entity.Order, error) {
	s.log.Infof("Creating order for user %s with %d items", userID, len(in.Items))

	if len(in.Items) == 0 {
		return nil, s.fail("validation", apperror.Field("items", "order must contain at least one item"))
	}
	method := entity.PaymentMethod(in.PaymentMethod)
	if !method.Valid() {
		return nil, s.fail("validation", apperror.Field("paymentMethod", "payment method must be online or cod"))
	}
	delivery, err := entity.ParseDeliveryOption(in.Delivery)
	if err != nil {
		return nil, s.fail("validation", apperror.Field("delivery", err.Error()))
	}
	for i, item := range in.Items {
		if item.ProductID == "" {
			return nil, s.fail("validation", apperror.Field(fmt.Sprintf("items[%d].productId", i), "product ID is required"))
		}
		if item.Quantity < 1 {
			return nil, s.fail("validation", apperror.Field(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1"))
		}
	}

	buyerSellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}

	items := make([]entity.OrderItem, 0, len(in.Items))
	var sellerID string
	for _, req := range in.Items {
		product, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, s.fail("not_found", apperror.NotFound(fmt.Sprintf("product %s not found", req.ProductID)))
			}
			return nil, storeError(err, "product")
		}
		if !product.IsActive {
			return nil, s.fail("not_found", apperror.NotFound(fmt.Sprintf("product %s not found", req.ProductID)))
		}
		if product.IsOwnedBy(buyerSellerID) {
			return nil, s.fail("validation", apperror.Validation("you cannot buy your own product", nil))
		}
		if !product.HasStock(req.Quantity) {
			s.log.Warnf("Insufficient stock for product %s: want %d, have %d", product.ID, req.Quantity, product.Stock)
			return nil, s.fail("insufficient_stock", apperror.Conflict(fmt.Sprintf("insufficient stock for %s", product.Name)))
		}
		if sellerID == "" {
			sellerID = product.SellerID
		} else if product.SellerID != sellerID {
			return nil, s.fail("validation", apperror.Validation("all items of an order must come from the same seller", nil))
		}

		unitPrice, err := s.unitPrice(ctx, userID, product, req)
		if err != nil {
			return nil, s.fail("price", err)
		}
		item, err := entity.NewOrderItem(product, req.Quantity, unitPrice)
		if err != nil {
			return nil, s.fail("validation", apperror.Validation(err.Error(), nil))
		}
		item.BargainID = req.BargainID
		item.ChallengeID = req.ChallengeID
		items = append(items, *item)
	}

	if err := s.checkPickup(ctx, delivery, sellerID); err != nil {
		return nil, s.fail("validation", err)
	}

	order, err := entity.NewOrder(userID, sellerID, items, delivery, method)
	if err != nil {
		return nil, s.fail("validation", apperror.Validation(err.Error(), nil))
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		reserved := make([]entity.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			if err := s.products.ReserveStock(txCtx, item.ProductID, item.Quantity); err != nil {
				s.releaseItems(txCtx, reserved)
				return err
			}
			reserved = append(reserved, item)
		}
		if _, err := s.orders.Create(txCtx, order); err != nil {
			s.releaseItems(txCtx, reserved)
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			s.log.Warnf("Stock reservation failed for user %s: %v", userID, err)
			return nil, s.fail("insufficient_stock", apperror.Conflict("insufficient stock for one or more items"))
		}
		s.log.Errorf("Failed to persist order for user %s: %v", userID, err)
		return nil, s.fail("internal", storeError(err, "order"))
	}
	s.metrics.OrdersCreatedTotal.Inc()

	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := s.cache.Delete(ctx, productIDs...); err != nil {
		s.log.Warnf("Failed to invalidate cached products for order %s: %v", order.ID, err)
	}
	s.publish(ctx, SubjectOrderCreated, order, "", "")
	s.notifier.OrderPlaced(ctx, order)

	s.log.Infof("Order %s created for user %s, total %.2f", order.ID, userID, order.Total)
	return order, nil
}

// unitPrice resolves the price a buyer pays for one unit of product.
func (s *orderService) unitPrice(ctx context.Context, buyerID string, product *entity.Product, in OrderItemInput) (float64, error) {
	if in.BargainID != "" && in.ChallengeID != "" {
		return 0, apperror.Validation("an item can reference a bargain or a challenge, not both", nil)
	}

	var agreed float64
	switch {
	case in.BargainID != "":
		bargain, err := s.bargains.GetByID(ctx, in.BargainID)
		if err != nil {
			return 0, storeError(err, "bargain")
		}
		price, ok := bargain.AcceptedPriceFor(buyerID, product.ID)
		if !ok {
			return 0, apperror.Conflict("bargain is not an accepted deal for this product")
		}
		agreed = price
	case in.ChallengeID != "":
		challenge, err := s.challenges.GetByID(ctx, in.ChallengeID)
		if err != nil {
			return 0, storeError(err, "challenge")
		}
		price, ok := challenge.AcceptedPriceFor(buyerID, product.ID)
		if !ok {
			return 0, apperror.Conflict("challenge has no accepted offer for this product")
		}
		agreed = price
	default:
		if in.FinalPrice != nil && !pricing.Equal(*in.FinalPrice, product.SellingPrice) {
			return 0, apperror.Conflict(fmt.Sprintf("price for %s has changed to %.2f", product.Name, product.SellingPrice))
		}
		return product.SellingPrice, nil
	}

	if in.FinalPrice != nil && !pricing.Equal(*in.FinalPrice, agreed) {
		return 0, apperror.Conflict(fmt.Sprintf("final price does not match the agreed price %.2f", agreed))
	}
	return agreed, nil
}

func (s *orderService) checkPickup(ctx context.Context, delivery entity.DeliveryOption, sellerID string) error {
	pickup, ok := delivery.(entity.SellerPickup)
	if !ok || pickup.PickupLocationID == "" {
		return nil
	}
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		return storeError(err, "seller")
	}
	if err := entity.CheckPickupLocation(delivery, seller); err != nil {
		return apperror.Field("delivery.pickupLocationId", err.Error())
	}
	return nil
}

func (s *orderService) releaseItems(ctx context.Context, items []entity.OrderItem) {
	for _, item := range items {
		if err := s.products.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.Errorf("Failed to release %d units of product %s: %v", item.Quantity, item.ProductID, err)
		}
	}
}

func (s *orderService) Get(ctx context.Context, actor Actor, orderID string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order")
	}
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return order, nil
	}
	sellerID, err := sellerIDOf(ctx, s.sellers, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !order.IsParticipant(actor.UserID, sellerID) {
		s.log.Warnf("User %s attempted to access order %s", actor.UserID, orderID)
		return nil, apperror.Forbidden("access denied to this order")
	}
	return order, nil
}

func checkOrderFilter(params repository.ListOrdersParams) error {
	if params.Status != "" {
		if _, err := entity.ParseOrderStatus(params.Status); err != nil {
			return apperror.Field("status", err.Error())
		}
	}
	switch params.SortBy {
	case "", "created_at", "total", "status":
		return nil
	}
	return apperror.Field("sort", "sort must be one of created_at, total, status")
}

func (s *orderService) list(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	if err := checkOrderFilter(params); err != nil {
		return nil, err
	}
	result, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, storeError(err, "orders")
	}
	return result, nil
}

func (s *orderService) ListMine(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	params.UserID = userID
	params.SellerID = ""
	return s.list(ctx, params)
}

func (s *orderService) ListSeller(ctx context.Context, userID string, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	sellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, apperror.Forbidden("a seller profile is required")
	}
	params.SellerID = sellerID
	params.UserID = ""
	return s.list(ctx, params)
}

func (s *orderService) ListAll(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	return s.list(ctx, params)
}

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID, status, notes string) (*entity.Order, error) {
	s.log.Infof("User %s setting order %s to %s", actor.UserID, orderID, status)
	next, err := entity.ParseOrderStatus(status)
	if err != nil {
		return nil, apperror.Field("status", err.Error())
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order")
	}

	sellerUserID := ""
	if !actor.IsAdmin() {
		sellerID, err := sellerIDOf(ctx, s.sellers, actor.UserID)
		if err != nil {
			return nil, err
		}
		if sellerID == "" || order.SellerID != sellerID {
			s.log.Warnf("User %s attempted to update status of order %s", actor.UserID, orderID)
			return nil, apperror.Forbidden("only the seller of this order can update its status")
		}
		sellerUserID = actor.UserID
	}

	if err := s.transition(ctx, order, next, notes, actor.UserID); err != nil {
		return nil, err
	}
	s.publish(ctx, SubjectOrderStatusUpdated, order, sellerUserID, notes)
	s.notifier.OrderStatusChanged(ctx, order, notes)
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, userID, orderID, reason string) (*entity.Order, error) {
	s.log.Infof("User %s cancelling order %s", userID, orderID)
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order")
	}
	if order.UserID != userID {
		s.log.Warnf("User %s attempted to cancel order %s of user %s", userID, orderID, order.UserID)
		return nil, apperror.Forbidden("access denied to this order")
	}
	if !order.CanBeCancelledByBuyer() {
		return nil, apperror.Conflict(fmt.Sprintf("order cannot be cancelled once it is %s", order.Status))
	}
	if reason == "" {
		reason = "Cancelled by buyer"
	}
	if err := s.transition(ctx, order, entity.StatusCancelled, reason, userID); err != nil {
		return nil, err
	}
	s.publish(ctx, SubjectOrderStatusUpdated, order, "", reason)
	s.notifier.OrderStatusChanged(ctx, order, reason)
	return order, nil
}

// transition applies next to order and persists it. Cancelling returns the
// reserved units to stock in the same unit of work.
func (s *orderService) transition(ctx context.Context, order *entity.Order, next entity.OrderStatus, notes, by string) error {
	entry, err := order.UpdateStatus(next, notes, by)
	if err != nil {
		return apperror.Conflict(err.Error())
	}
	params := repository.UpdateOrderStatusParams{
		OrderID:       order.ID,
		Status:        order.Status,
		Entry:         entry,
		PaymentStatus: order.PaymentStatus,
		DeliveredAt:   order.DeliveredAt,
		Version:       order.Version,
	}
	if next == entity.StatusCancelled {
		params.CancelledAt = order.CancelledAt
		params.CancelReason = order.CancelReason
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.UpdateStatus(txCtx, params); err != nil {
			return err
		}
		if next != entity.StatusCancelled {
			return nil
		}
		for _, item := range order.Items {
			if err := s.products.ReleaseStock(txCtx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restock product %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Errorf("Failed to move order %s to %s: %v", order.ID, next, err)
		return storeError(err, "order")
	}
	order.Version++

	if next == entity.StatusCancelled {
		ids := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		if err := s.cache.Delete(ctx, ids...); err != nil {
			s.log.Warnf("Failed to invalidate cached products for order %s: %v", order.ID, err)
		}
	}
	s.log.Infof("Order %s is now %s", order.ID, order.Status)
	return nil
}

func (s *orderService) publish(ctx context.Context, subject string, order *entity.Order, sellerUserID, notes string) {
	if sellerUserID == "" {
		if seller, err := s.sellers.GetByID(ctx, order.SellerID); err == nil {
			sellerUserID = seller.UserID
		}
	}
	if err := s.msgPublisher.Publish(ctx, subject, newOrderEvent(order, sellerUserID, notes)); err != nil {
		s.log.Warnf("Failed to publish %s for order %s: %v", subject, order.ID, err)
	}
}
