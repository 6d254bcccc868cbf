package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPageSize = 20

func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, repository.ErrNotFound)
	}
	return objID, nil
}

func insertedHex(res *mongo.InsertOneResult) (string, error) {
	objID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// versionMiss explains a zero-match versioned update: the document is gone
// or someone else bumped its version first.
func versionMiss(ctx context.Context, coll *mongo.Collection, objID primitive.ObjectID, version int) error {
	var current struct {
		Version int `bson:"version"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": objID}, options.FindOne().SetProjection(bson.M{"version": 1})).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if err == nil && current.Version != version {
		return repository.ErrOptimisticLock
	}
	return repository.ErrUpdateFailed
}

func pageOptions(page, pageSize int) (*options.FindOptions, int, int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page <= 0 {
		page = 1
	}
	opts := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	return opts, page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
