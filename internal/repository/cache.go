package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

type ProductCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productIDs ...string) error
}

// OAuthStateStore keeps the anti-forgery state of a pending OAuth login.
type OAuthStateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume removes state and reports whether it was present.
	Consume(ctx context.Context, state string) (bool, error)
}
