package mongo

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type txManager struct {
	client *mongo.Client
	log    logger.Logger
}

// NewTxManager runs units of work in a multi-document transaction. It needs
// a replica set or sharded cluster.
func NewTxManager(client *mongo.Client, log logger.Logger) repository.TxManager {
	return &txManager{client: client, log: log.Named("MongoTx")}
}

func (m *txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOpts)
	if err != nil {
		m.log.Debugf("transaction aborted: %v", err)
		return err
	}
	return nil
}

type directTx struct{}

// NewDirectTxManager runs fn without a transaction, for standalone servers.
// Callers compensate their own partial writes.
func NewDirectTxManager() repository.TxManager {
	return directTx{}
}

func (directTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
