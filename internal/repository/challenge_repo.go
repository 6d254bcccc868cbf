package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ListChallengesParams struct {
	UserID     string
	Category   string
	ActiveOnly bool
	Now        time.Time
	Page       int
	PageSize   int
}

type ListChallengesResult struct {
	Challenges  []entity.Challenge
	TotalCount  int64
	CurrentPage int
	PageSize    int
	TotalPages  int
}

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *entity.Challenge) (string, error)
	GetByID(ctx context.Context, challengeID string) (*entity.Challenge, error)
	// AddResponse appends the response only while the challenge is active,
	// unexpired and has no response from the same seller; otherwise ErrConflict.
	AddResponse(ctx context.Context, challengeID string, response *entity.ChallengeResponse) (*entity.Challenge, error)
	Update(ctx context.Context, challenge *entity.Challenge) error
	List(ctx context.Context, params ListChallengesParams) (*ListChallengesResult, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
