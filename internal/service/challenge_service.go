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

type RespondChallengeInput struct {
	ProductID    string
	OfferedPrice float64
	Message      string
}

type ChallengeService interface {
	Create(ctx context.Context, userID string, in entity.NewChallengeParams) (*entity.Challenge, error)
	ListActive(ctx context.Context, category string, page, pageSize int) (*repository.ListChallengesResult, error)
	ListMine(ctx context.Context, userID string, page, pageSize int) (*repository.ListChallengesResult, error)
	Get(ctx context.Context, challengeID string) (*entity.Challenge, error)
	Respond(ctx context.Context, userID, challengeID string, in RespondChallengeInput) (*entity.Challenge, error)
	Accept(ctx context.Context, userID, challengeID, responseID string) (*entity.Challenge, error)
	Cancel(ctx context.Context, userID, challengeID string) (*entity.Challenge, error)
}

type ChallengeServiceConfig struct {
	TTL   time.Duration
	Ratio float64
}

type challengeService struct {
	challenges   repository.ChallengeRepository
	products     repository.ProductRepository
	sellers      repository.SellerRepository
	msgPublisher nats.MessagePublisher
	metrics      *metrics.MetricsManager
	cfg          ChallengeServiceConfig
	log          logger.Logger
}

func NewChallengeService(
	challenges repository.ChallengeRepository,
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	msgPublisher nats.MessagePublisher,
	metricsManager *metrics.MetricsManager,
	cfg ChallengeServiceConfig,
	log logger.Logger,
) ChallengeService {
	return &challengeService{
		challenges:   challenges,
		products:     products,
		sellers:      sellers,
		msgPublisher: msgPublisher,
		metrics:      metricsManager,
		cfg:          cfg,
		log:          log.Named("ChallengeService"),
	}
}

func challengeError(err error) error {
	switch {
	case errors.Is(err, entity.ErrChallengePriceTooHigh),
		errors.Is(err, entity.ErrChallengeNotActive),
		errors.Is(err, entity.ErrChallengeExpired),
		errors.Is(err, entity.ErrOfferAboveChallenge):
		return apperror.Conflict(err.Error())
	case errors.Is(err, entity.ErrResponseNotFound):
		return apperror.NotFound(err.Error())
	case errors.Is(err, entity.ErrOwnChallenge):
		return apperror.Validation(err.Error(), nil)
	default:
		return apperror.Validation(err.Error(), nil)
	}
}

func (s *challengeService) expireIfStale(ctx context.Context, c *entity.Challenge) {
	if !c.Expire(time.Now().UTC()) {
		return
	}
	if err := s.challenges.Update(ctx, c); err != nil {
		s.log.Warnf("Failed to persist expiry of challenge %s: %v", c.ID, err)
	}
}

func (s *challengeService) Create(ctx context.Context, userID string, in entity.NewChallengeParams) (*entity.Challenge, error) {
	s.log.Infof("User %s challenging %q at %.2f", userID, in.ProductName, in.ChallengePrice)
	in.UserID = userID
	challenge, err := entity.NewChallenge(in, s.cfg.Ratio, s.cfg.TTL)
	if err != nil {
		s.log.Warnf("Challenge rejected for user %s: %v", userID, err)
		return nil, challengeError(err)
	}
	if _, err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, storeError(err, "challenge")
	}
	s.metrics.ChallengesCreatedTotal.Inc()
	s.publish(ctx, SubjectChallengeCreated, challenge, "", "")
	return challenge, nil
}

func (s *challengeService) ListActive(ctx context.Context, category string, page, pageSize int) (*repository.ListChallengesResult, error) {
	result, err := s.challenges.List(ctx, repository.ListChallengesParams{
		Category:   category,
		ActiveOnly: true,
		Now:        time.Now().UTC(),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, storeError(err, "challenges")
	}
	return result, nil
}

func (s *challengeService) ListMine(ctx context.Context, userID string, page, pageSize int) (*repository.ListChallengesResult, error) {
	result, err := s.challenges.List(ctx, repository.ListChallengesParams{UserID: userID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, storeError(err, "challenges")
	}
	for i := range result.Challenges {
		s.expireIfStale(ctx, &result.Challenges[i])
	}
	return result, nil
}

func (s *challengeService) Get(ctx context.Context, challengeID string) (*entity.Challenge, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, storeError(err, "challenge")
	}
	s.expireIfStale(ctx, challenge)
	return challenge, nil
}

func (s *challengeService) Respond(ctx context.Context, userID, challengeID string, in RespondChallengeInput) (*entity.Challenge, error) {
	s.log.Infof("User %s responding to challenge %s with product %s", userID, challengeID, in.ProductID)
	seller, err := approvedSeller(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, storeError(err, "challenge")
	}
	s.expireIfStale(ctx, challenge)

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, storeError(err, "product")
	}
	if !product.IsActive {
		return nil, apperror.NotFound("product not found")
	}

	response, err := challenge.NewResponse(userID, seller.ID, product, in.OfferedPrice, in.Message)
	if err != nil {
		return nil, challengeError(err)
	}
	if challenge.HasResponseFrom(seller.ID) {
		return nil, apperror.Conflict("you have already responded to this challenge")
	}

	updated, err := s.challenges.AddResponse(ctx, challengeID, response)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperror.Conflict("challenge is closed or you have already responded")
		}
		return nil, storeError(err, "challenge")
	}
	s.publish(ctx, SubjectChallengeResponded, updated, seller.ID, response.ID)
	return updated, nil
}

func (s *challengeService) ownChallenge(ctx context.Context, userID, challengeID string) (*entity.Challenge, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, storeError(err, "challenge")
	}
	if challenge.UserID != userID {
		return nil, apperror.Forbidden("only the author of this challenge can do that")
	}
	s.expireIfStale(ctx, challenge)
	return challenge, nil
}

func (s *challengeService) Accept(ctx context.Context, userID, challengeID, responseID string) (*entity.Challenge, error) {
	s.log.Infof("User %s accepting response %s on challenge %s", userID, responseID, challengeID)
	challenge, err := s.ownChallenge(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if err := challenge.Accept(responseID); err != nil {
		return nil, challengeError(err)
	}
	if err := s.challenges.Update(ctx, challenge); err != nil {
		return nil, storeError(err, "challenge")
	}
	s.publish(ctx, SubjectChallengeAccepted, challenge, challenge.AcceptedBy, responseID)
	return challenge, nil
}

func (s *challengeService) Cancel(ctx context.Context, userID, challengeID string) (*entity.Challenge, error) {
	challenge, err := s.ownChallenge(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if err := challenge.Cancel(); err != nil {
		return nil, challengeError(err)
	}
	if err := s.challenges.Update(ctx, challenge); err != nil {
		return nil, storeError(err, "challenge")
	}
	s.log.Infof("Challenge %s cancelled", challengeID)
	return challenge, nil
}

func (s *challengeService) publish(ctx context.Context, subject string, c *entity.Challenge, sellerID, responseID string) {
	if err := s.msgPublisher.Publish(ctx, subject, newChallengeEvent(c, sellerID, responseID)); err != nil {
		s.log.Warnf("Failed to publish %s for challenge %s: %v", subject, c.ID, err)
	}
}
