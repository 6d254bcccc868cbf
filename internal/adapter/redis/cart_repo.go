package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

// A cart is a hash: one "item:<productId>" field per line plus updated_at.
const (
	cartKeyPrefix    = "cart:"
	cartItemField    = "item:"
	cartUpdatedField = "updated_at"
)

type cartLine struct {
	SellerID string    `json:"s"`
	Quantity int       `json:"q"`
	AddedAt  time.Time `json:"a"`
}

type cartStore struct {
	rdb *redis.Client
}

func NewCartRepository(rdb *redis.Client) repository.CartRepository {
	return &cartStore{rdb: rdb}
}

func (s *cartStore) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	fields, err := s.rdb.HGetAll(ctx, cartKeyPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load cart %s: %w", userID, err)
	}
	cart := entity.NewCart(userID)
	if len(fields) == 0 {
		return cart, nil
	}

	for field, raw := range fields {
		if field == cartUpdatedField {
			if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				cart.UpdatedAt = ts
			}
			continue
		}
		productID, ok := strings.CutPrefix(field, cartItemField)
		if !ok {
			continue
		}
		var line cartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("redis: decode cart line %s/%s: %w", userID, productID, err)
		}
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: productID,
			SellerID:  line.SellerID,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt,
		})
	}
	sort.Slice(cart.Items, func(i, j int) bool {
		a, b := cart.Items[i], cart.Items[j]
		if a.AddedAt.Equal(b.AddedAt) {
			return a.ProductID < b.ProductID
		}
		return a.AddedAt.Before(b.AddedAt)
	})
	return cart, nil
}

func (s *cartStore) Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error {
	if cart == nil || cart.UserID == "" {
		return errors.New("redis: cart without owner")
	}
	key := cartKeyPrefix + cart.UserID
	if cart.IsEmpty() {
		return s.DeleteByUserID(ctx, cart.UserID)
	}

	values := make(map[string]interface{}, len(cart.Items)+1)
	for _, item := range cart.Items {
		encoded, err := json.Marshal(cartLine{SellerID: item.SellerID, Quantity: item.Quantity, AddedAt: item.AddedAt})
		if err != nil {
			return fmt.Errorf("redis: encode cart line %s/%s: %w", cart.UserID, item.ProductID, err)
		}
		values[cartItemField+item.ProductID] = encoded
	}
	values[cartUpdatedField] = cart.UpdatedAt.UTC().Format(time.RFC3339Nano)

	// Lines removed since the last save must not survive, so the hash is
	// rebuilt inside MULTI.
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save cart %s: %w", cart.UserID, err)
	}
	return nil
}

func (s *cartStore) DeleteByUserID(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, cartKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis: delete cart %s: %w", userID, err)
	}
	return nil
}
