package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListProductsParams struct {
	SellerID        string
	Category        string
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	AllowBargaining *bool
	IncludeInactive bool
	SortBy          string
	SortOrder       string
	Page            int
	PageSize        int
}

type ListProductsResult struct {
	Products    []entity.Product
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (string, error)
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	// Update writes the editable fields when the stored version matches product.Version.
	Update(ctx context.Context, product *entity.Product) error
	SetActive(ctx context.Context, productID string, active bool) error
	List(ctx context.Context, params ListProductsParams) (*ListProductsResult, error)
	// ReserveStock decrements stock and increments sales only if the product
	// is active and holds at least quantity units; otherwise ErrInsufficientStock.
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}
