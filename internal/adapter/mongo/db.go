package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appName      = "marketplace-service"
	pingTimeout  = 5 * time.Second
	indexTimeout = 10 * time.Second
)

func clientOptions(cfg config.MongoDBConfig) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URI).SetAppName(appName)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.User != "" {
		opts.SetAuth(options.Credential{Username: cfg.User, Password: cfg.Password})
	}
	return opts
}

// NewClient connects and pings the primary. Transactions need a replica set,
// so a standalone server only works with use_transactions off.
func NewClient(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, clientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func Ping(ctx context.Context, client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping primary: %w", err)
	}
	return nil
}

// ensureIndexes runs at repository construction; CreateMany is a no-op for
// indexes that already exist with the same keys and options.
func ensureIndexes(coll *mongo.Collection, indexes []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("mongo: indexes on %s: %w", coll.Name(), err)
	}
	return nil
}
