package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const productCollectionName = "products"

var productSortFields = map[string]string{
	"price":      "selling_price",
	"created_at": "created_at",
	"sales":      "sales",
	"name":       "name",
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) (repository.ProductRepository, error) {
	collection := db.Collection(productCollectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "category", Value: 1}, {Key: "selling_price", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "sales", Value: -1}}},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &productRepository{collection: collection}, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) (string, error) {
	now := time.Now().UTC()
	doc := fromProduct(product)
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	id, err := insertedHex(res)
	if err != nil {
		return "", err
	}
	product.ID = id
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now
	return id, nil
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	objID, err := objectID(productID)
	if err != nil {
		return nil, err
	}
	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", productID, err)
	}
	return doc.toEntity(), nil
}

// Update writes the seller-managed fields, stock included, under the version
// filter. Sales only move through ReserveStock and ReleaseStock, which also
// bump the version so a stale stock edit fails with ErrOptimisticLock.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	objID, err := objectID(product.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	filter := bson.M{"_id": objID, "version": product.Version}
	set := bson.M{
		"name":             product.Name,
		"description":      product.Description,
		"category":         product.Category,
		"images":           product.Images,
		"base_price":       product.BasePrice,
		"selling_price":    product.SellingPrice,
		"price_discount":   product.PriceDiscount,
		"stock":            product.Stock,
		"allow_bargaining": product.AllowBargaining,
		"is_active":        product.IsActive,
		"updated_at":       now,
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if product.MinBargainPrice != nil {
		set["min_bargain_price"] = *product.MinBargainPrice
	} else {
		update["$unset"] = bson.M{"min_bargain_price": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	if result.MatchedCount == 0 {
		return versionMiss(ctx, r.collection, objID, product.Version)
	}
	product.Version++
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) SetActive(ctx context.Context, productID string, active bool) error {
	objID, err := objectID(productID)
	if err != nil {
		return err
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to set active flag on product %s: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) ReserveStock(ctx context.Context, productID string, quantity int) error {
	objID, err := objectID(productID)
	if err != nil {
		return err
	}
	filter := bson.M{
		"_id":       objID,
		"is_active": true,
		"stock":     bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity, "sales": quantity, "version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve stock for product %s: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", productID, repository.ErrInsufficientStock)
	}
	return nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	objID, err := objectID(productID)
	if err != nil {
		return err
	}
	update := bson.M{
		"$inc": bson.M{"stock": quantity, "sales": -quantity, "version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to release stock for product %s: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	filter := bson.M{}
	if !params.IncludeInactive {
		filter["is_active"] = true
	}
	if params.SellerID != "" {
		filter["seller_id"] = params.SellerID
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.AllowBargaining != nil {
		filter["allow_bargaining"] = *params.AllowBargaining
	}
	if params.Search != "" {
		pattern := regexp.QuoteMeta(params.Search)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		priceRange := bson.M{}
		if params.MinPrice != nil {
			priceRange["$gte"] = *params.MinPrice
		}
		if params.MaxPrice != nil {
			priceRange["$lte"] = *params.MaxPrice
		}
		filter["selling_price"] = priceRange
	}

	findOptions, page, pageSize := pageOptions(params.Page, params.PageSize)
	sortField, ok := productSortFields[params.SortBy]
	if !ok {
		sortField = "created_at"
	}
	sortOrder := -1
	if params.SortOrder == "asc" {
		sortOrder = 1
	}
	findOptions.SetSort(bson.D{{Key: sortField, Value: sortOrder}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed products: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, *d.toEntity())
	}
	return &repository.ListProductsResult{
		Products:    products,
		TotalCount:  totalCount,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages(totalCount, pageSize),
	}, nil
}
