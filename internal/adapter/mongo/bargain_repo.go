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

const bargainCollectionName = "bargains"

type bargainRepository struct {
	collection *mongo.Collection
}

func NewBargainRepository(db *mongo.Database) (repository.BargainRepository, error) {
	collection := db.Collection(bargainCollectionName)
	indexes := []mongo.IndexModel{
		// one open negotiation per buyer and product
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "expires_at", Value: 1}}},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &bargainRepository{collection: collection}, nil
}

func (r *bargainRepository) Create(ctx context.Context, bargain *entity.Bargain) (string, error) {
	res, err := r.collection.InsertOne(ctx, fromBargain(bargain))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create bargain: %w", err)
	}
	id, err := insertedHex(res)
	if err != nil {
		return "", err
	}
	bargain.ID = id
	return id, nil
}

func (r *bargainRepository) findOne(ctx context.Context, filter bson.M) (*entity.Bargain, error) {
	var doc bargainDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bargain: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *bargainRepository) GetByID(ctx context.Context, bargainID string) (*entity.Bargain, error) {
	objID, err := objectID(bargainID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *bargainRepository) FindOpen(ctx context.Context, productID, userID string) (*entity.Bargain, error) {
	return r.findOne(ctx, bson.M{"product_id": productID, "user_id": userID, "active": true})
}

func (r *bargainRepository) Update(ctx context.Context, bargain *entity.Bargain) error {
	objID, err := objectID(bargain.ID)
	if err != nil {
		return err
	}
	doc := fromBargain(bargain)
	filter := bson.M{"_id": objID, "version": bargain.Version}
	update := bson.M{
		"$set": bson.M{
			"status":               doc.Status,
			"active":               doc.Active,
			"seller_counter_offer": doc.SellerCounterOffer,
			"final_price":          doc.FinalPrice,
			"messages":             doc.Messages,
			"updated_at":           time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update bargain %s: %w", bargain.ID, err)
	}
	if result.MatchedCount == 0 {
		return versionMiss(ctx, r.collection, objID, bargain.Version)
	}
	bargain.Version++
	return nil
}

func (r *bargainRepository) List(ctx context.Context, params repository.ListBargainsParams) (*repository.ListBargainsResult, error) {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.SellerID != "" {
		filter["seller_id"] = params.SellerID
	}
	if params.Status != "" {
		filter["status"] = params.Status
	}
	findOptions, page, pageSize := pageOptions(params.Page, params.PageSize)
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list bargains: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bargainDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed bargains: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count bargains: %w", err)
	}

	bargains := make([]entity.Bargain, 0, len(docs))
	for _, d := range docs {
		bargains = append(bargains, *d.toEntity())
	}
	return &repository.ListBargainsResult{
		Bargains:    bargains,
		TotalCount:  total,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages(total, pageSize),
	}, nil
}

func (r *bargainRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"active":     true,
		"expires_at": bson.M{"$lte": now},
	}
	update := bson.M{
		"$set": bson.M{"status": string(entity.BargainExpired), "active": false, "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire bargains: %w", err)
	}
	return res.ModifiedCount, nil
}
