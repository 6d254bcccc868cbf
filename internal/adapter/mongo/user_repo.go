package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) (repository.UserRepository, error) {
	collection := db.Collection(userCollectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"google_id": bson.M{"$exists": true}})},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &userRepository{collection: collection}, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	res, err := r.collection.InsertOne(ctx, fromUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return insertedHex(res)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	objID, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": entity.NormalizeEmail(email)})
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	if googleID == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *userRepository) LinkGoogle(ctx context.Context, params repository.LinkGoogleParams) error {
	objID, err := objectID(params.UserID)
	if err != nil {
		return err
	}
	set := bson.M{"google_id": params.GoogleID, "updated_at": time.Now().UTC()}
	if params.AvatarURL != "" {
		set["avatar_url"] = params.AvatarURL
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to link google account for user %s: %w", params.UserID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) SetSeller(ctx context.Context, userID string, isSeller bool) error {
	objID, err := objectID(userID)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_seller": isSeller, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to set seller flag for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
