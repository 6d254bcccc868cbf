package repository

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

// CartRepository keeps one cart per buyer. A buyer without a stored cart gets
// an empty one rather than ErrNotFound.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	// Save replaces the stored lines and restarts the expiry clock. Saving an
	// empty cart removes it.
	Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error
	DeleteByUserID(ctx context.Context, userID string) error
}
