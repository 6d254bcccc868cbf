package service

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   entity.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// sellerIDOf returns the seller profile ID of userID, or "" when the user
// has not registered as a seller.
func sellerIDOf(ctx context.Context, sellers repository.SellerRepository, userID string) (string, error) {
	seller, err := sellers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", storeError(err, "seller")
	}
	return seller.ID, nil
}

// approvedSeller loads the caller's seller profile and requires it to be approved.
func approvedSeller(ctx context.Context, sellers repository.SellerRepository, userID string) (*entity.Seller, error) {
	seller, err := sellers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Forbidden("a seller profile is required")
		}
		return nil, storeError(err, "seller")
	}
	if !seller.IsApproved() {
		return nil, apperror.Forbidden("seller account is not approved")
	}
	return seller, nil
}
