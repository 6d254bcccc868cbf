package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const oauthStateKeyPrefix = "oauth_state:"

type oauthStateStore struct {
	client *redis.Client
}

func NewOAuthStateStore(client *redis.Client) repository.OAuthStateStore {
	return &oauthStateStore{client: client}
}

func (s *oauthStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, oauthStateKeyPrefix+state, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	if !ok {
		return repository.ErrAlreadyExists
	}
	return nil
}

func (s *oauthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, err := s.client.GetDel(ctx, oauthStateKeyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return true, nil
}
