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
)

const orderCollectionName = "orders"

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) (repository.OrderRepository, error) {
	collection := db.Collection(orderCollectionName)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "payment.gateway_order_id", Value: 1}}},
	}
	if err := ensureIndexes(collection, indexes); err != nil {
		return nil, err
	}
	return &orderRepository{collection: collection}, nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	res, err := r.collection.InsertOne(ctx, fromOrder(order))
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	id, err := insertedHex(res)
	if err != nil {
		return "", err
	}
	order.ID = id
	return id, nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	objID, err := objectID(orderID)
	if err != nil {
		return nil, err
	}

	var doc orderDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	return doc.toEntity(), nil
}

func (r *orderRepository) versionedUpdate(ctx context.Context, orderID string, version int, update bson.M) error {
	objID, err := objectID(orderID)
	if err != nil {
		return err
	}
	filter := bson.M{
		"_id":     objID,
		"version": version,
	}
	update["$inc"] = bson.M{"version": 1}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		return versionMiss(ctx, r.collection, objID, version)
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, params repository.UpdateOrderStatusParams) error {
	set := bson.M{
		"status":     string(params.Status),
		"updated_at": time.Now().UTC(),
	}
	if params.PaymentStatus != "" {
		set["payment_status"] = string(params.PaymentStatus)
	}
	if params.DeliveredAt != nil {
		set["delivered_at"] = *params.DeliveredAt
	}
	if params.CancelledAt != nil {
		set["cancelled_at"] = *params.CancelledAt
		set["cancel_reason"] = params.CancelReason
	}
	return r.versionedUpdate(ctx, params.OrderID, params.Version, bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": fromStatusEntry(params.Entry)},
	})
}

func (r *orderRepository) UpdatePayment(ctx context.Context, params repository.UpdateOrderPaymentParams) error {
	set := bson.M{
		"payment":        fromPayment(params.Payment),
		"payment_status": string(params.PaymentStatus),
		"updated_at":     time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if params.Status != "" {
		set["status"] = string(params.Status)
	}
	if params.Entry != nil {
		update["$push"] = bson.M{"status_history": fromStatusEntry(*params.Entry)}
	}
	return r.versionedUpdate(ctx, params.OrderID, params.Version, update)
}

func (r *orderRepository) SetGatewayOrder(ctx context.Context, params repository.SetGatewayOrderParams) error {
	return r.versionedUpdate(ctx, params.OrderID, params.Version, bson.M{
		"$set": bson.M{
			"payment.gateway_order_id": params.GatewayOrderID,
			"updated_at":               time.Now().UTC(),
		},
	})
}

func (r *orderRepository) List(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
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
	if params.SortBy != "" {
		sortOrder := 1
		if params.SortOrder == "desc" {
			sortOrder = -1
		}
		findOptions.SetSort(bson.D{{Key: params.SortBy, Value: sortOrder}})
	} else {
		findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed orders: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	orders := make([]entity.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, *d.toEntity())
	}
	return &repository.ListOrdersResult{
		Orders:      orders,
		TotalCount:  totalCount,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages(totalCount, pageSize),
	}, nil
}
