package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListBargainsParams struct {
	UserID   string
	SellerID string
	Status   string
	Page     int
	PageSize int
}

type ListBargainsResult struct {
	Bargains    []entity.Bargain
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type BargainRepository interface {
	// Create fails with ErrAlreadyExists while the buyer holds an open bargain on the product.
	Create(ctx context.Context, bargain *entity.Bargain) (string, error)
	GetByID(ctx context.Context, bargainID string) (*entity.Bargain, error)
	FindOpen(ctx context.Context, productID, userID string) (*entity.Bargain, error)
	// Update persists status, offers and messages when the stored version matches.
	Update(ctx context.Context, bargain *entity.Bargain) error
	List(ctx context.Context, params ListBargainsParams) (*ListBargainsResult, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
