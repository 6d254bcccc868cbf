//go:build integration

package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClient *redis.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start Redis resource: %s", err)
	}

	if err := pool.Retry(func() error {
		testClient = redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
		return testClient.Ping(context.Background()).Err()
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	code := m.Run()

	_ = testClient.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge Redis resource: %s", err)
	}
	os.Exit(code)
}

func TestCartRepository_RoundTripAndEmptyDefault(t *testing.T) {
	ctx := context.Background()
	repo := NewCartRepository(testClient)

	empty, err := repo.GetByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	cart := entity.NewCart("buyer-1")
	require.NoError(t, cart.Add("p1", "seller-1", 2))
	require.NoError(t, cart.Add("p2", "seller-2", 1))
	require.NoError(t, repo.Save(ctx, cart, time.Minute))

	loaded, err := repo.GetByUserID(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "p1", loaded.Items[0].ProductID)
	assert.Equal(t, "seller-1", loaded.Items[0].SellerID)
	assert.Equal(t, 2, loaded.Items[0].Quantity)

	require.NoError(t, loaded.Remove("p1"))
	require.NoError(t, repo.Save(ctx, loaded, time.Minute))
	loaded, err = repo.GetByUserID(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "p2", loaded.Items[0].ProductID)

	ttl, err := testClient.TTL(ctx, cartKeyPrefix+"buyer-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.DeleteByUserID(ctx, "buyer-1"))
	loaded, err = repo.GetByUserID(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestProductCache_KeepsVersion(t *testing.T) {
	ctx := context.Background()
	cache := NewProductCache(testClient)

	p := &entity.Product{ID: "p42", SellerID: "s1", Name: "Stool", SellingPrice: 450, Stock: 2, IsActive: true, Version: 7}
	require.NoError(t, cache.Set(ctx, p, time.Minute))

	got, err := cache.Get(ctx, "p42")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Version)
	assert.Equal(t, 450.0, got.SellingPrice)

	require.NoError(t, cache.Delete(ctx, "p42", "p43"))
	_, err = cache.Get(ctx, "p42")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOAuthStateStore_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewOAuthStateStore(testClient)
	state := fmt.Sprintf("state-%d", time.Now().UnixNano())

	require.NoError(t, store.Save(ctx, state, time.Minute))
	assert.ErrorIs(t, store.Save(ctx, state, time.Minute), repository.ErrAlreadyExists)

	ok, err := store.Consume(ctx, state)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok)
}
