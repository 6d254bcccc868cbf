package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type UpdateSellerParams struct {
	SellerID        string
	BusinessName    *string
	Description     *string
	Phone           *string
	PickupLocations []entity.PickupLocation
}

type VerifySellerParams struct {
	SellerID string
	Status   entity.VerificationStatus
	Notes    string
}

type ListSellersParams struct {
	Status   string
	Page     int
	PageSize int
}

type ListSellersResult struct {
	Sellers     []entity.Seller
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type SellerRepository interface {
	Create(ctx context.Context, seller *entity.Seller) (string, error)
	GetByID(ctx context.Context, sellerID string) (*entity.Seller, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Seller, error)
	Update(ctx context.Context, params UpdateSellerParams) (*entity.Seller, error)
	SetVerification(ctx context.Context, params VerifySellerParams) (*entity.Seller, error)
	List(ctx context.Context, params ListSellersParams) (*ListSellersResult, error)
}
