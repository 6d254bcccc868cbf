package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
)

// fulfilment order of the non-terminal path; cancelled and returned sit outside it.
var statusRank = map[OrderStatus]int{
	StatusPending:        0,
	StatusConfirmed:      1,
	StatusProcessing:     2,
	StatusShipped:        3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := statusRank[st]; ok || st == StatusCancelled || st == StatusReturned {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCOD
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrSameStatus        = errors.New("order already has this status")
	ErrOrderTerminal     = errors.New("order is in a terminal status")
)

type OrderItem struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Image       string  `json:"image,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	FinalPrice  float64 `json:"finalPrice"`
	BargainID   string  `json:"bargainId,omitempty"`
	ChallengeID string  `json:"challengeId,omitempty"`
}

func NewOrderItem(product *Product, quantity int, finalPrice float64) (*OrderItem, error) {
	if product == nil || product.ID == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	if finalPrice <= 0 {
		return nil, errors.New("price must be positive")
	}
	item := &OrderItem{
		ProductID:  product.ID,
		Name:       product.Name,
		Quantity:   quantity,
		Price:      product.SellingPrice,
		FinalPrice: pricing.Round2(finalPrice),
	}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	return item, nil
}

func (i OrderItem) LineTotal() float64 {
	return pricing.LineTotal(i.FinalPrice, i.Quantity)
}

type PaymentDetails struct {
	GatewayOrderID string     `json:"gatewayOrderId,omitempty"`
	PaymentID      string     `json:"paymentId,omitempty"`
	Signature      string     `json:"-"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Notes     string      `json:"notes,omitempty"`
	By        string      `json:"by,omitempty"`
}

type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	SellerID       string         `json:"sellerId"`
	Items          []OrderItem    `json:"items"`
	Subtotal       float64        `json:"subtotal"`
	DeliveryCharge float64        `json:"deliveryCharge"`
	Total          float64        `json:"total"`
	Delivery       DeliveryInfo   `json:"delivery"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	Payment        PaymentDetails `json:"payment"`
	Status         OrderStatus    `json:"status"`
	StatusHistory  []StatusEntry  `json:"statusHistory"`
	DeliveredAt    *time.Time     `json:"deliveredAt,omitempty"`
	CancelledAt    *time.Time     `json:"cancelledAt,omitempty"`
	CancelReason   string         `json:"cancelReason,omitempty"`
	Version        int            `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// NewOrder prices the items, applies the delivery charge and records the
// initial pending entry.
func NewOrder(userID, sellerID string, items []OrderItem, delivery DeliveryOption, method PaymentMethod) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if sellerID == "" {
		return nil, errors.New("seller ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	if delivery == nil {
		return nil, errors.New("delivery option is required")
	}
	if !method.Valid() {
		return nil, fmt.Errorf("unknown payment method %q", method)
	}

	now := time.Now().UTC()
	order := &Order{
		UserID:        userID,
		SellerID:      sellerID,
		Items:         items,
		Delivery:      delivery.Info(),
		PaymentMethod: method,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		StatusHistory: []StatusEntry{{Status: StatusPending, Timestamp: now, Notes: "Order placed", By: userID}},
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	order.CalculateTotals(delivery)
	return order, nil
}

func (o *Order) CalculateTotals(delivery DeliveryOption) {
	lines := make([]pricing.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.FinalPrice, Quantity: item.Quantity})
	}
	o.Subtotal = pricing.Subtotal(lines)
	o.DeliveryCharge = delivery.Charge(o.Subtotal)
	o.Total = pricing.Add(o.Subtotal, o.DeliveryCharge)
}

// CanTransition reports whether the order may move to next. Fulfilment
// moves forward only; cancelled and returned are reachable from any
// non-terminal status.
func (o *Order) CanTransition(next OrderStatus) error {
	if o.Status == next {
		return ErrSameStatus
	}
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderTerminal, o.Status)
	}
	if next == StatusCancelled || next == StatusReturned {
		return nil
	}
	cur, okCur := statusRank[o.Status]
	nxt, okNext := statusRank[next]
	if !okCur || !okNext || nxt <= cur {
		return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, o.Status, next)
	}
	return nil
}

// UpdateStatus applies a validated transition and appends it to the history.
func (o *Order) UpdateStatus(next OrderStatus, notes, by string) (StatusEntry, error) {
	if err := o.CanTransition(next); err != nil {
		return StatusEntry{}, err
	}
	now := time.Now().UTC()
	entry := StatusEntry{Status: next, Timestamp: now, Notes: notes, By: by}
	o.Status = next
	o.StatusHistory = append(o.StatusHistory, entry)
	o.UpdatedAt = now
	switch next {
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = notes
		if o.PaymentStatus == PaymentPaid {
			o.PaymentStatus = PaymentRefunded
		}
	}
	return entry, nil
}

// CanBeCancelledByBuyer is true before the seller starts processing.
func (o *Order) CanBeCancelledByBuyer() bool {
	switch o.Status {
	case StatusPending, StatusConfirmed:
		return true
	default:
		return false
	}
}

// MarkPaid records a verified payment and confirms a pending order.
func (o *Order) MarkPaid(details PaymentDetails) (*StatusEntry, error) {
	if o.PaymentStatus == PaymentPaid {
		return nil, nil
	}
	if o.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: %s", ErrOrderTerminal, o.Status)
	}
	now := time.Now().UTC()
	details.PaidAt = &now
	o.Payment = details
	o.PaymentStatus = PaymentPaid
	o.UpdatedAt = now
	if o.Status == StatusPending {
		entry, err := o.UpdateStatus(StatusConfirmed, "Payment received", o.UserID)
		if err != nil {
			return nil, err
		}
		return &entry, nil
	}
	return nil, nil
}

func (o *Order) IsParticipant(userID, sellerID string) bool {
	return (userID != "" && o.UserID == userID) || (sellerID != "" && o.SellerID == sellerID)
}
