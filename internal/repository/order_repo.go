package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type UpdateOrderStatusParams struct {
	OrderID       string
	Status        entity.OrderStatus
	Entry         entity.StatusEntry
	PaymentStatus entity.PaymentStatus
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string
	Version       int
}

type UpdateOrderPaymentParams struct {
	OrderID       string
	Payment       entity.PaymentDetails
	PaymentStatus entity.PaymentStatus
	Status        entity.OrderStatus
	Entry         *entity.StatusEntry
	Version       int
}

type SetGatewayOrderParams struct {
	OrderID        string
	GatewayOrderID string
	Version        int
}

type ListOrdersParams struct {
	UserID    string
	SellerID  string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type ListOrdersResult struct {
	Orders      []entity.Order
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, params UpdateOrderStatusParams) error
	UpdatePayment(ctx context.Context, params UpdateOrderPaymentParams) error
	SetGatewayOrder(ctx context.Context, params SetGatewayOrderParams) error
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
}
