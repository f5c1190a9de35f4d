package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	FulfillmentResource = "order"

	fulfillmentColumns = `
  order_id, restaurant_id, COALESCE(order_number, ''),
  COALESCE(customer, ''), COALESCE(customer_email, ''), COALESCE(customer_phone, ''), COALESCE(customer_address, ''),
  total_amount, COALESCE(payment_status, ''), COALESCE(payment_method, ''),
  COALESCE(fulfillment_status, ''), COALESCE(delivery_method, ''), COALESCE(item_count, 0),
  COALESCE(product_details::text, ''), COALESCE(kitchen_notes, ''),
  order_date, created_at, updated_at, approved_at, ready_at, dispatched_at, completed_at, cancelled_at,
  COALESCE(cancel_reason, ''), prep_time_minutes, delivery_date`
)

// FulfillmentRepository provides database operations for the order reporting table
type FulfillmentRepository struct {
	pool *pgxpool.Pool
}

// NewFulfillmentRepository creates a new FulfillmentRepository instance
func NewFulfillmentRepository(pool *pgxpool.Pool) *FulfillmentRepository {
	return &FulfillmentRepository{pool: pool}
}

// ListOrders returns the most recent reporting rows of a restaurant.
func (r *FulfillmentRepository) ListOrders(
	ctx context.Context,
	filter domain.FulfillmentFilter,
) ([]domain.FulfillmentRecord, error) {
	query := "SELECT" + fulfillmentColumns + " FROM order_management WHERE restaurant_id = $1"
	args := []any{filter.RestaurantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += " AND fulfillment_status = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders for restaurant %d: %w", filter.RestaurantID, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// GetOrderByNumber retrieves one reporting row by restaurant and order number.
func (r *FulfillmentRepository) GetOrderByNumber(
	ctx context.Context,
	restaurantID int64,
	orderNumber string,
) (*domain.FulfillmentRecord, error) {
	query := "SELECT" + fulfillmentColumns +
		" FROM order_management WHERE restaurant_id = $1 AND order_number = $2 LIMIT 1"

	rows, err := r.pool.Query(ctx, query, restaurantID, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", orderNumber, err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{
			Resource: FulfillmentResource,
			Key:      "order_number",
			Value:    orderNumber,
		}
	}

	return &records[0], nil
}

// TransitionStatus sets the fulfillment status and stamps the stage columns that
// belong to it.
func (r *FulfillmentRepository) TransitionStatus(ctx context.Context, t domain.FulfillmentTransition) error {
	args := []any{t.Status, t.At}
	sets := []string{"fulfillment_status = $1", "updated_at = $2"}

	atColumn, byColumn := domain.StageColumns(t.Status)
	if atColumn != "" {
		sets = append(sets, atColumn+" = $2")
	}
	if byColumn != "" {
		args = append(args, t.UpdatedBy)
		sets = append(sets, byColumn+" = $"+strconv.Itoa(len(args)))
	}
	if t.Status == domain.FulfillmentCancelled && t.CancelReason != "" {
		args = append(args, t.CancelReason)
		sets = append(sets, "cancel_reason = $"+strconv.Itoa(len(args)))
	}
	if t.Status == domain.FulfillmentApproved && t.PrepTimeMinutes != nil {
		args = append(args, *t.PrepTimeMinutes)
		sets = append(sets, "prep_time_minutes = $"+strconv.Itoa(len(args)))
	}

	args = append(args, t.RestaurantID, t.OrderNumber)
	query := fmt.Sprintf(
		"UPDATE order_management SET %s WHERE restaurant_id = $%d AND order_number = $%d",
		strings.Join(sets, ", "),
		len(args)-1,
		len(args),
	)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status of order %s: %w", t.OrderNumber, err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: FulfillmentResource,
			Key:      "order_number",
			Value:    t.OrderNumber,
		}
	}

	return nil
}

// SetPrepTime records the kitchen's preparation estimate for an order.
func (r *FulfillmentRepository) SetPrepTime(ctx context.Context, restaurantID int64, orderNumber string, minutes int) error {
	const query = `
UPDATE order_management
SET prep_time_minutes = $1, updated_at = NOW()
WHERE restaurant_id = $2 AND order_number = $3
`
	tag, err := r.pool.Exec(ctx, query, minutes, restaurantID, orderNumber)
	if err != nil {
		return fmt.Errorf("update prep time of order %s: %w", orderNumber, err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: FulfillmentResource,
			Key:      "order_number",
			Value:    orderNumber,
		}
	}

	return nil
}

// StatusTotals groups the orders created in [from, to] by fulfillment status.
func (r *FulfillmentRepository) StatusTotals(
	ctx context.Context,
	restaurantID int64,
	from, to time.Time,
) ([]domain.StatusTotal, error) {
	const query = `
SELECT COALESCE(fulfillment_status, ''), COUNT(*), COALESCE(SUM(total_amount), 0)
FROM order_management
WHERE restaurant_id = $1
  AND created_at BETWEEN $2 AND $3
GROUP BY fulfillment_status
`
	rows, err := r.pool.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query status totals for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	var totals []domain.StatusTotal
	for rows.Next() {
		var st domain.StatusTotal
		if err := rows.Scan(&st.Status, &st.Count, &st.Amount); err != nil {
			return nil, fmt.Errorf("scan status totals for restaurant %d: %w", restaurantID, err)
		}
		totals = append(totals, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status totals for restaurant %d: %w", restaurantID, err)
	}

	return totals, nil
}

// AveragePrepTime returns the mean prep time of orders that left the kitchen in
// [from, to]. ok is false when no order carries a prep time.
func (r *FulfillmentRepository) AveragePrepTime(
	ctx context.Context,
	restaurantID int64,
	from, to time.Time,
) (avg float64, ok bool, err error) {
	const query = `
SELECT AVG(prep_time_minutes)::float8
FROM order_management
WHERE restaurant_id = $1
  AND created_at BETWEEN $2 AND $3
  AND prep_time_minutes IS NOT NULL
  AND fulfillment_status IN ('ready', 'dispatched', 'completed')
`
	var value *float64
	if err := r.pool.QueryRow(ctx, query, restaurantID, from, to).Scan(&value); err != nil {
		return 0, false, fmt.Errorf("query average prep time for restaurant %d: %w", restaurantID, err)
	}

	if value == nil {
		return 0, false, nil
	}

	return *value, true, nil
}

// ListReportRows returns every reporting row created in [from, to].
func (r *FulfillmentRepository) ListReportRows(
	ctx context.Context,
	restaurantID int64,
	from, to time.Time,
) ([]domain.FulfillmentRecord, error) {
	query := "SELECT" + fulfillmentColumns +
		" FROM order_management WHERE restaurant_id = $1 AND created_at BETWEEN $2 AND $3 ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query report rows for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]domain.FulfillmentRecord, error) {
	records := make([]domain.FulfillmentRecord, 0)
	for rows.Next() {
		var (
			rec       domain.FulfillmentRecord
			total     decimal.NullDecimal
			prepTime  *int32
			itemCount int32
		)
		if err := rows.Scan(
			&rec.OrderID, &rec.RestaurantID, &rec.OrderNumber,
			&rec.Customer.Name, &rec.Customer.Email, &rec.Customer.Phone, &rec.Customer.Address,
			&total, &rec.PaymentStatus, &rec.PaymentMethod,
			&rec.FulfillmentStatus, &rec.DeliveryMethod, &itemCount,
			&rec.ProductDetails, &rec.KitchenNotes,
			&rec.OrderDate, &rec.CreatedAt, &rec.UpdatedAt, &rec.ApprovedAt, &rec.ReadyAt,
			&rec.DispatchedAt, &rec.CompletedAt, &rec.CancelledAt,
			&rec.CancelReason, &prepTime, &rec.DeliveryDate,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if total.Valid {
			rec.TotalAmount = total.Decimal
		}
		rec.ItemCount = int(itemCount)
		if prepTime != nil {
			minutes := int(*prepTime)
			rec.PrepTimeMinutes = &minutes
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return records, nil
}
