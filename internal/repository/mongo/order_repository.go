package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	OrderResource = "order"

	defaultListLimit = 100
)

// OrderRepository stores intake orders as documents.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository on the orders collection of db.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(OrdersCollection)}
}

// EnsureIndexes creates the indexes the intake and listing paths depend on. The
// unique idempotency index lets concurrent duplicates be rejected by the store.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetName("uniq_idempotency_key").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "idempotency_key", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("idx_order_number"),
		},
		{
			Keys: bson.D{
				{Key: "website_restaurant_id", Value: 1},
				{Key: "internal_status", Value: 1},
			},
			Options: options.Index().SetName("idx_restaurant_internal_status"),
		},
		{
			Keys:    bson.D{{Key: "received_at", Value: -1}},
			Options: options.Index().SetName("idx_received_at"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}

	return nil
}

// FindByIdempotencyKey retrieves the order stored under key.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.findOne(ctx, bson.D{{Key: "idempotency_key", Value: key}}, "idempotency_key", key)
}

// FindByOrderNumber retrieves the order carrying the upstream order number.
func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.findOne(ctx, bson.D{{Key: "orderNumber", Value: orderNumber}}, "order_number", orderNumber)
}

// InsertOrder stores a new order. A duplicate idempotency key is reported as a
// ConflictError.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &repository.ConflictError{
				Resource: OrderResource,
				Key:      "idempotency_key",
				Value:    order.IdempotencyKey,
			}
		}
		return fmt.Errorf("insert order %s: %w", order.OrderNumber, err)
	}

	return nil
}

// ListByRestaurant returns the newest orders of a restaurant first.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := bson.D{{Key: "website_restaurant_id", Value: filter.RestaurantID}}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}
	if filter.InternalStatus != "" {
		query = append(query, bson.E{Key: "internal_status", Value: filter.InternalStatus})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders for restaurant %s: %w", filter.RestaurantID, err)
	}

	orders := make([]domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders for restaurant %s: %w", filter.RestaurantID, err)
	}

	return orders, nil
}

// ApplyStatusChange writes a relay transition onto the order with the given number,
// overwriting both the upstream and the internal status. It reports whether a
// matching order existed.
func (r *OrderRepository) ApplyStatusChange(
	ctx context.Context,
	orderNumber string,
	change domain.StatusChange,
) (bool, error) {
	set := bson.D{}
	if change.Status != "" {
		set = append(set,
			bson.E{Key: "status", Value: change.Status},
			bson.E{Key: "internal_status", Value: change.Status},
		)
	}
	if change.UpdatedAt != nil {
		set = append(set, bson.E{Key: "updated_at", Value: *change.UpdatedAt})
	}
	if change.DispatchedAt != nil {
		set = append(set, bson.E{Key: "dispatched_at", Value: *change.DispatchedAt})
	}
	if change.CancelledAt != nil {
		set = append(set, bson.E{Key: "cancelled_at", Value: *change.CancelledAt})
	}
	if change.CancelReason != "" {
		set = append(set, bson.E{Key: "cancel_reason", Value: change.CancelReason})
	}
	if change.Notes != "" {
		set = append(set, bson.E{Key: "notes", Value: change.Notes})
	}

	if len(set) == 0 {
		return false, errors.New("status change has no fields to set")
	}

	res, err := r.collection.UpdateOne(
		ctx,
		bson.D{{Key: "orderNumber", Value: orderNumber}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return false, fmt.Errorf("update order %s: %w", orderNumber, err)
	}

	return res.MatchedCount > 0, nil
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.D, key, value string) (*domain.Order, error) {
	var order domain.Order
	if err := r.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &repository.NotFoundError{
				Resource: OrderResource,
				Key:      key,
				Value:    value,
			}
		}
		return nil, fmt.Errorf("find order by %s %s: %w", key, value, err)
	}

	return &order, nil
}
