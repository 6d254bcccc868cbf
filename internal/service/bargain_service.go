package service

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type BargainService interface {
	Create(ctx context.Context, userID, productID string, offer float64, message string) (*entity.Bargain, error)
	SellerRespond(ctx context.Context, userID, bargainID, action string, counterOffer *float64, message string) (*entity.Bargain, error)
	BuyerRespond(ctx context.Context, userID, bargainID, action, message string) (*entity.Bargain, error)
	Get(ctx context.Context, actor Actor, bargainID string) (*entity.Bargain, error)
	ListMine(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error)
	ListSeller(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error)
}

type bargainService struct {
	bargains     repository.BargainRepository
	products     repository.ProductRepository
	sellers      repository.SellerRepository
	msgPublisher nats.MessagePublisher
	metrics      *metrics.MetricsManager
	ttl          time.Duration
	log          logger.Logger
}

func NewBargainService(
	bargains repository.BargainRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	msgPublisher nats.MessagePublisher,
	metricsManager *metrics.MetricsManager,
	ttl time.Duration,
	log logger.Logger,
) BargainService {
	return &bargainService{
		bargains:     bargains,
		products:     products,
		sellers:      sellers,
		msgPublisher: msgPublisher,
		metrics:      metricsManager,
		ttl:          ttl,
		log:          log.Named("BargainService"),
	}
}

func bargainError(err error) error {
	switch {
	case errors.Is(err, entity.ErrBargainingDisabled),
		errors.Is(err, entity.ErrOfferNotBelowPrice),
		errors.Is(err, entity.ErrOfferBelowMinimum),
		errors.Is(err, entity.ErrBargainExpired),
		errors.Is(err, entity.ErrBargainClosed),
		errors.Is(err, entity.ErrBargainWrongTurn):
		return apperror.Conflict(err.Error())
	case errors.Is(err, entity.ErrCounterBelowOffer), errors.Is(err, entity.ErrCounterMissing):
		return apperror.Field("counterOffer", err.Error())
	case errors.Is(err, entity.ErrUnknownAction):
		return apperror.Field("action", err.Error())
	default:
		return apperror.Validation(err.Error(), nil)
	}
}

// expireIfStale persists the expiry of an open bargain past its deadline.
func (s *bargainService) expireIfStale(ctx context.Context, b *entity.Bargain) {
	if !b.Expire(time.Now().UTC()) {
		return
	}
	if err := s.bargains.Update(ctx, b); err != nil {
		s.log.Warnf("Failed to persist expiry of bargain %s: %v", b.ID, err)
		return
	}
	s.publish(ctx, b)
}

func (s *bargainService) Create(ctx context.Context, userID, productID string, offer float64, message string) (*entity.Bargain, error) {
	s.log.Infof("User %s offering %.2f on product %s", userID, offer, productID)
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product")
	}
	if !product.IsActive {
		return nil, apperror.NotFound("product not found")
	}
	sellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	if product.IsOwnedBy(sellerID) {
		return nil, apperror.Validation("you cannot bargain on your own product", nil)
	}

	existing, err := s.bargains.FindOpen(ctx, productID, userID)
	switch {
	case err == nil:
		s.expireIfStale(ctx, existing)
		if existing.Status.IsOpen() {
			return nil, apperror.Conflict("you already have an open bargain on this product")
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err, "bargain")
	}

	bargain, err := entity.NewBargain(product, userID, offer, message, s.ttl)
	if err != nil {
		s.log.Warnf("Bargain rejected for product %s: %v", productID, err)
		return nil, bargainError(err)
	}
	if _, err := s.bargains.Create(ctx, bargain); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperror.Conflict("you already have an open bargain on this product")
		}
		return nil, storeError(err, "bargain")
	}
	s.metrics.BargainsCreatedTotal.Inc()

	if err := s.msgPublisher.Publish(ctx, SubjectBargainCreated, newBargainEvent(bargain)); err != nil {
		s.log.Warnf("Failed to publish %s for bargain %s: %v", SubjectBargainCreated, bargain.ID, err)
	}
	s.log.Infof("Bargain %s opened on product %s", bargain.ID, productID)
	return bargain, nil
}

func (s *bargainService) SellerRespond(ctx context.Context, userID, bargainID, action string, counterOffer *float64, message string) (*entity.Bargain, error) {
	s.log.Infof("User %s responding %s to bargain %s", userID, action, bargainID)
	bargain, err := s.bargains.GetByID(ctx, bargainID)
	if err != nil {
		return nil, storeError(err, "bargain")
	}
	sellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	if sellerID == "" || bargain.SellerID != sellerID {
		return nil, apperror.Forbidden("only the seller of this product can respond")
	}
	s.expireIfStale(ctx, bargain)

	if err := bargain.SellerRespond(entity.BargainAction(action), counterOffer, message); err != nil {
		return nil, bargainError(err)
	}
	return s.save(ctx, bargain)
}

func (s *bargainService) BuyerRespond(ctx context.Context, userID, bargainID, action, message string) (*entity.Bargain, error) {
	s.log.Infof("User %s answering counter offer on bargain %s with %s", userID, bargainID, action)
	bargain, err := s.bargains.GetByID(ctx, bargainID)
	if err != nil {
		return nil, storeError(err, "bargain")
	}
	if bargain.UserID != userID {
		return nil, apperror.Forbidden("only the buyer of this bargain can respond")
	}
	s.expireIfStale(ctx, bargain)

	if err := bargain.BuyerRespond(entity.BargainAction(action), message); err != nil {
		return nil, bargainError(err)
	}
	return s.save(ctx, bargain)
}

func (s *bargainService) save(ctx context.Context, bargain *entity.Bargain) (*entity.Bargain, error) {
	if err := s.bargains.Update(ctx, bargain); err != nil {
		return nil, storeError(err, "bargain")
	}
	s.publish(ctx, bargain)
	s.log.Infof("Bargain %s is now %s", bargain.ID, bargain.Status)
	return bargain, nil
}

func (s *bargainService) publish(ctx context.Context, bargain *entity.Bargain) {
	if err := s.msgPublisher.Publish(ctx, SubjectBargainUpdated, newBargainEvent(bargain)); err != nil {
		s.log.Warnf("Failed to publish %s for bargain %s: %v", SubjectBargainUpdated, bargain.ID, err)
	}
}

func (s *bargainService) Get(ctx context.Context, actor Actor, bargainID string) (*entity.Bargain, error) {
	bargain, err := s.bargains.GetByID(ctx, bargainID)
	if err != nil {
		return nil, storeError(err, "bargain")
	}
	if !actor.IsAdmin() && bargain.UserID != actor.UserID {
		sellerID, err := sellerIDOf(ctx, s.sellers, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !bargain.IsParticipant(actor.UserID, sellerID) {
			return nil, apperror.Forbidden("access denied to this bargain")
		}
	}
	s.expireIfStale(ctx, bargain)
	return bargain, nil
}

func (s *bargainService) list(ctx context.Context, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	result, err := s.bargains.List(ctx, params)
	if err != nil {
		return nil, storeError(err, "bargains")
	}
	for i := range result.Bargains {
		s.expireIfStale(ctx, &result.Bargains[i])
	}
	return result, nil
}

func (s *bargainService) ListMine(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	params.UserID = userID
	params.SellerID = ""
	return s.list(ctx, params)
}

func (s *bargainService) ListSeller(ctx context.Context, userID string, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
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
