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

const sellerCollectionName = "sellers"

type sellerRepository struct {
	collection *mongo.Collection
}

func NewSellerRepository(db *mongo.Database) (repository.SellerRepository, error) {
	collection := db.Collection(sellerCollectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verification_status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &sellerRepository{collection: collection}, nil
}

func (r *sellerRepository) Create(ctx context.Context, seller *entity.Seller) (string, error) {
	res, err := r.collection.InsertOne(ctx, fromSeller(seller))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create seller: %w", err)
	}
	return insertedHex(res)
}

func (r *sellerRepository) findOne(ctx context.Context, filter bson.M) (*entity.Seller, error) {
	var doc sellerDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find seller: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *sellerRepository) GetByID(ctx context.Context, sellerID string) (*entity.Seller, error) {
	objID, err := objectID(sellerID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *sellerRepository) GetByUserID(ctx context.Context, userID string) (*entity.Seller, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *sellerRepository) findOneAndSet(ctx context.Context, sellerID string, set bson.M) (*entity.Seller, error) {
	objID, err := objectID(sellerID)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sellerDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update seller %s: %w", sellerID, err)
	}
	return doc.toEntity(), nil
}

func (r *sellerRepository) Update(ctx context.Context, params repository.UpdateSellerParams) (*entity.Seller, error) {
	set := bson.M{}
	if params.BusinessName != nil {
		set["business_name"] = *params.BusinessName
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Phone != nil {
		set["phone"] = *params.Phone
	}
	if params.PickupLocations != nil {
		set["pickup_locations"] = fromPickupLocations(params.PickupLocations)
	}
	return r.findOneAndSet(ctx, params.SellerID, set)
}

func (r *sellerRepository) SetVerification(ctx context.Context, params repository.VerifySellerParams) (*entity.Seller, error) {
	return r.findOneAndSet(ctx, params.SellerID, bson.M{
		"verification_status": string(params.Status),
		"verification_notes":  params.Notes,
	})
}

func (r *sellerRepository) List(ctx context.Context, params repository.ListSellersParams) (*repository.ListSellersResult, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["verification_status"] = params.Status
	}
	findOptions, page, pageSize := pageOptions(params.Page, params.PageSize)
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []sellerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed sellers: %w", err)
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count sellers: %w", err)
	}

	sellers := make([]entity.Seller, 0, len(docs))
	for _, d := range docs {
		sellers = append(sellers, *d.toEntity())
	}
	return &repository.ListSellersResult{
		Sellers:     sellers,
		TotalCount:  total,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages(total, pageSize),
	}, nil
}
