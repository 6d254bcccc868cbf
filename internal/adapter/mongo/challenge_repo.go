package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const challengeCollectionName = "challenges"

type challengeRepository struct {
	collection *mongo.Collection
}

func NewChallengeRepository(db *mongo.Database) (repository.ChallengeRepository, error) {
	collection := db.Collection(challengeCollectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &challengeRepository{collection: collection}, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *entity.Challenge) (string, error) {
	res, err := r.collection.InsertOne(ctx, fromChallenge(challenge))
	if err != nil {
		return "", fmt.Errorf("failed to create challenge: %w", err)
	}
	id, err := insertedHex(res)
	if err != nil {
		return "", err
	}
	challenge.ID = id
	return id, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, challengeID string) (*entity.Challenge, error) {
	objID, err := objectID(challengeID)
	if err != nil {
		return nil, err
	}
	var doc challengeDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get challenge by ID %s: %w", challengeID, err)
	}
	return doc.toEntity(), nil
}

// AddResponse pushes the response with a filter that only matches an open
// challenge without a response from the same seller, so two concurrent
// responses from one seller cannot both land.
func (r *challengeRepository) AddResponse(ctx context.Context, challengeID string, response *entity.ChallengeResponse) (*entity.Challenge, error) {
	objID, err := objectID(challengeID)
	if err != nil {
		return nil, err
	}
	if response.ID == "" {
		response.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	filter := bson.M{
		"_id":                 objID,
		"status":              string(entity.ChallengeActive),
		"expires_at":          bson.M{"$gt": now},
		"responses.seller_id": bson.M{"$ne": response.SellerID},
	}
	update := bson.M{
		"$push": bson.M{"responses": fromChallengeResponse(*response)},
		"$set":  bson.M{"updated_at": now},
		"$inc":  bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc challengeDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.GetByID(ctx, challengeID); errors.Is(getErr, repository.ErrNotFound) {
				return nil, repository.ErrNotFound
			}
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to add response to challenge %s: %w", challengeID, err)
	}
	return doc.toEntity(), nil
}

func (r *challengeRepository) Update(ctx context.Context, challenge *entity.Challenge) error {
	objID, err := objectID(challenge.ID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "version": challenge.Version}
	update := bson.M{
		"$set": bson.M{
			"status":               string(challenge.Status),
			"responses":            fromChallengeResponses(challenge.Responses),
			"accepted_by":          challenge.AcceptedBy,
			"accepted_response_id": challenge.AcceptedResponseID,
			"updated_at":           time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update challenge %s: %w", challenge.ID, err)
	}
	if result.MatchedCount == 0 {
		return versionMiss(ctx, r.collection, objID, challenge.Version)
	}
	challenge.Version++
	return nil
}

func (r *challengeRepository) List(ctx context.Context, params repository.ListChallengesParams) (*repository.ListChallengesResult, error) {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.ActiveOnly {
		now := params.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		filter["status"] = string(entity.ChallengeActive)
		filter["expires_at"] = bson.M{"$gt": now}
	}
	findOptions, page, pageSize := pageOptions(params.Page, params.PageSize)
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []challengeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed challenges: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count challenges: %w", err)
	}

	challenges := make([]entity.Challenge, 0, len(docs))
	for _, d := range docs {
		challenges = append(challenges, *d.toEntity())
	}
	return &repository.ListChallengesResult{
		Challenges:  challenges,
		TotalCount:  total,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages(total, pageSize),
	}, nil
}

func (r *challengeRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":     string(entity.ChallengeActive),
		"expires_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{"status": string(entity.ChallengeExpired), "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire challenges: %w", err)
	}
	return res.ModifiedCount, nil
}
