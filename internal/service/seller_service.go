package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/google/uuid"
)

type RegisterSellerInput struct {
	BusinessName    string
	Description     string
	Phone           string
	TaxID           string
	IsCloseKnit     bool
	PickupLocations []entity.PickupLocation
}

type UpdateSellerInput struct {
	BusinessName    *string
	Description     *string
	Phone           *string
	PickupLocations []entity.PickupLocation
}

type SellerService interface {
	Register(ctx context.Context, userID string, in RegisterSellerInput) (*entity.Seller, error)
	Me(ctx context.Context, userID string) (*entity.Seller, error)
	UpdateMe(ctx context.Context, userID string, in UpdateSellerInput) (*entity.Seller, error)
	Get(ctx context.Context, sellerID string) (*entity.Seller, error)
	Verify(ctx context.Context, sellerID string, status entity.VerificationStatus, notes string) (*entity.Seller, error)
	List(ctx context.Context, params repository.ListSellersParams) (*repository.ListSellersResult, error)
}

type sellerService struct {
	sellers repository.SellerRepository
	users   repository.UserRepository
	log     logger.Logger
}

func NewSellerService(sellers repository.SellerRepository, users repository.UserRepository, log logger.Logger) SellerService {
	return &sellerService{sellers: sellers, users: users, log: log.Named("SellerService")}
}

func normalizePickups(pickups []entity.PickupLocation) ([]entity.PickupLocation, error) {
	out := make([]entity.PickupLocation, 0, len(pickups))
	for _, p := range pickups {
		if strings.TrimSpace(p.Address) == "" {
			return nil, apperror.Field("pickupLocations", "every pickup location needs an address")
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *sellerService) Register(ctx context.Context, userID string, in RegisterSellerInput) (*entity.Seller, error) {
	s.log.Infof("Registering seller profile for user %s", userID)
	if _, err := s.sellers.GetByUserID(ctx, userID); err == nil {
		return nil, apperror.Conflict("user is already registered as a seller")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "seller")
	}

	pickups, err := normalizePickups(in.PickupLocations)
	if err != nil {
		return nil, err
	}
	seller, err := entity.NewSeller(userID, in.BusinessName, in.TaxID, in.IsCloseKnit, pickups)
	if err != nil {
		if errors.Is(err, entity.ErrTaxIDRequired) {
			return nil, apperror.Field("taxId", err.Error())
		}
		return nil, apperror.Validation(err.Error(), nil)
	}
	seller.Description = in.Description
	seller.Phone = in.Phone

	if _, err := s.sellers.Create(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperror.Conflict("user is already registered as a seller")
		}
		s.log.Errorf("Failed to create seller for user %s: %v", userID, err)
		return nil, storeError(err, "seller")
	}
	if err := s.users.SetSeller(ctx, userID, true); err != nil {
		s.log.Errorf("Seller %s created but flagging user %s failed: %v", seller.ID, userID, err)
		return nil, storeError(err, "user")
	}
	s.log.Infof("Seller %s registered with status %s", seller.ID, seller.VerificationStatus)
	return seller, nil
}

func (s *sellerService) Me(ctx context.Context, userID string) (*entity.Seller, error) {
	seller, err := s.sellers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "seller profile")
	}
	return seller, nil
}

func (s *sellerService) UpdateMe(ctx context.Context, userID string, in UpdateSellerInput) (*entity.Seller, error) {
	seller, err := s.sellers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "seller profile")
	}
	params := repository.UpdateSellerParams{
		SellerID:     seller.ID,
		BusinessName: in.BusinessName,
		Description:  in.Description,
		Phone:        in.Phone,
	}
	if in.BusinessName != nil && strings.TrimSpace(*in.BusinessName) == "" {
		return nil, apperror.Field("businessName", "business name cannot be empty")
	}
	if in.PickupLocations != nil {
		if params.PickupLocations, err = normalizePickups(in.PickupLocations); err != nil {
			return nil, err
		}
	}
	updated, err := s.sellers.Update(ctx, params)
	if err != nil {
		return nil, storeError(err, "seller profile")
	}
	return updated, nil
}

func (s *sellerService) Get(ctx context.Context, sellerID string) (*entity.Seller, error) {
	seller, err := s.sellers.GetByID(ctx, sellerID)
	if err != nil {
		return nil, storeError(err, "seller")
	}
	return seller, nil
}

func (s *sellerService) Verify(ctx context.Context, sellerID string, status entity.VerificationStatus, notes string) (*entity.Seller, error) {
	if status != entity.VerificationApproved && status != entity.VerificationRejected {
		return nil, apperror.Field("status", "status must be approved or rejected")
	}
	seller, err := s.sellers.SetVerification(ctx, repository.VerifySellerParams{SellerID: sellerID, Status: status, Notes: notes})
	if err != nil {
		return nil, storeError(err, "seller")
	}
	s.log.Infof("Seller %s marked %s", sellerID, status)
	return seller, nil
}

func (s *sellerService) List(ctx context.Context, params repository.ListSellersParams) (*repository.ListSellersResult, error) {
	if params.Status != "" && !entity.VerificationStatus(params.Status).Valid() {
		return nil, apperror.Field("status", "unknown verification status")
	}
	result, err := s.sellers.List(ctx, params)
	if err != nil {
		return nil, storeError(err, "sellers")
	}
	return result, nil
}
