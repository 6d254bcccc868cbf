package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	productCacheKeyPrefix = "product:"
)

type productCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) repository.ProductCache {
	return &productCache{client: client}
}

func (r *productCache) key(productID string) string {
	return productCacheKeyPrefix + productID
}

func (r *productCache) Get(ctx context.Context, productID string) (*entity.Product, error) {
	val, err := r.client.Get(ctx, r.key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s from redis: %w", productID, err)
	}

	var product cachedProduct
	if err := json.Unmarshal(val, &product); err != nil {
		_ = r.Delete(ctx, productID)
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", productID, err)
	}
	return product.toEntity(), nil
}

func (r *productCache) Set(ctx context.Context, product *entity.Product, ttl time.Duration) error {
	if product == nil || product.ID == "" {
		return errors.New("cannot cache nil product or product with empty ID")
	}
	data, err := json.Marshal(fromProduct(product))
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID, err)
	}
	if err := r.client.Set(ctx, r.key(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product %s in redis: %w", product.ID, err)
	}
	return nil
}

func (r *productCache) Delete(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, r.key(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict products %v from redis: %w", productIDs, err)
	}
	return nil
}

// cachedProduct keeps the version that the public JSON form hides.
type cachedProduct struct {
	entity.Product
	Version int `json:"version"`
}

func fromProduct(p *entity.Product) cachedProduct {
	return cachedProduct{Product: *p, Version: p.Version}
}

func (c cachedProduct) toEntity() *entity.Product {
	p := c.Product
	p.Version = c.Version
	return &p
}
