package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type LinkGoogleParams struct {
	UserID    string
	GoogleID  string
	AvatarURL string
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (string, error)
	GetByID(ctx context.Context, userID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	LinkGoogle(ctx context.Context, params LinkGoogleParams) error
	SetSeller(ctx context.Context, userID string, isSeller bool) error
}
