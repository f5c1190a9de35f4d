package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

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
  COALESCE(CAST(product_details AS CHAR), ''), COALESCE(kitchen_notes, ''),
  order_date, created_at, updated_at, approved_at, ready_at, dispatched_at, completed_at, cancelled_at,
  COALESCE(cancel_reason, ''), prep_time_minutes, delivery_date`
)

// FulfillmentRepository provides database operations for the order reporting table
type FulfillmentRepository struct {
	db *sql.DB
}

// NewFulfillmentRepository creates a new FulfillmentRepository instance
func NewFulfillmentRepository(db *sql.DB) *FulfillmentRepository {
	return &FulfillmentRepository{db: db}
}

// ListOrders returns the most recent reporting rows of a restaurant.
func (r *FulfillmentRepository) ListOrders(
	ctx context.Context,
	filter domain.FulfillmentFilter,
) ([]domain.FulfillmentRecord, error) {
	query := "SELECT" + fulfillmentColumns + " FROM order_management WHERE restaurant_id = ?"
	args := []any{filter.RestaurantID}

	if filter.Status != "" {
		query += " AND fulfillment_status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
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
		" FROM order_management WHERE restaurant_id = ? AND order_number = ? LIMIT 1"

	rows, err := r.db.QueryContext(ctx, query, restaurantID, orderNumber)
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
	sets := []string{"fulfillment_status = ?", "updated_at = ?"}
	args := []any{t.Status, t.At}

	atColumn, byColumn := domain.StageColumns(t.Status)
	if atColumn != "" {
		sets = append(sets, atColumn+" = ?")
		args = append(args, t.At)
	}
	if byColumn != "" {
		sets = append(sets, byColumn+" = ?")
		args = append(args, t.UpdatedBy)
	}
	if t.Status == domain.FulfillmentCancelled && t.CancelReason != "" {
		sets = append(sets, "cancel_reason = ?")
		args = append(args, t.CancelReason)
	}
	if t.Status == domain.FulfillmentApproved && t.PrepTimeMinutes != nil {
		sets = append(sets, "prep_time_minutes = ?")
		args = append(args, *t.PrepTimeMinutes)
	}

	args = append(args, t.RestaurantID, t.OrderNumber)
	query := "UPDATE order_management SET " + strings.Join(sets, ", ") +
		" WHERE restaurant_id = ? AND order_number = ?"

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status of order %s: %w", t.OrderNumber, err)
	}

	return requireRow(res, t.OrderNumber)
}

// SetPrepTime records the kitchen's preparation estimate for an order.
func (r *FulfillmentRepository) SetPrepTime(ctx context.Context, restaurantID int64, orderNumber string, minutes int) error {
	const query = `
UPDATE order_management
SET prep_time_minutes = ?, updated_at = NOW()
WHERE restaurant_id = ? AND order_number = ?
`
	res, err := r.db.ExecContext(ctx, query, minutes, restaurantID, orderNumber)
	if err != nil {
		return fmt.Errorf("update prep time of order %s: %w", orderNumber, err)
	}

	return requireRow(res, orderNumber)
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
WHERE restaurant_id = ?
  AND created_at BETWEEN ? AND ?
GROUP BY fulfillment_status
`
	rows, err := r.db.QueryContext(ctx, query, restaurantID, from, to)
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
SELECT AVG(prep_time_minutes)
FROM order_management
WHERE restaurant_id = ?
  AND created_at BETWEEN ? AND ?
  AND prep_time_minutes IS NOT NULL
  AND fulfillment_status IN ('ready', 'dispatched', 'completed')
`
	var value sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, query, restaurantID, from, to).Scan(&value); err != nil {
		return 0, false, fmt.Errorf("query average prep time for restaurant %d: %w", restaurantID, err)
	}

	return value.Float64, value.Valid, nil
}

// ListReportRows returns every reporting row created in [from, to].
func (r *FulfillmentRepository) ListReportRows(
	ctx context.Context,
	restaurantID int64,
	from, to time.Time,
) ([]domain.FulfillmentRecord, error) {
	query := "SELECT" + fulfillmentColumns +
		" FROM order_management WHERE restaurant_id = ? AND created_at BETWEEN ? AND ? ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query report rows for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func requireRow(res sql.Result, orderNumber string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderNumber, err)
	}

	if n == 0 {
		return &repository.NotFoundError{
			Resource: FulfillmentResource,
			Key:      "order_number",
			Value:    orderNumber,
		}
	}

	return nil
}

func collectRecords(rows *sql.Rows) ([]domain.FulfillmentRecord, error) {
	records := make([]domain.FulfillmentRecord, 0)
	for rows.Next() {
		var (
			rec      domain.FulfillmentRecord
			total    decimal.NullDecimal
			prepTime sql.NullInt32
			times    [9]sql.NullTime
		)
		if err := rows.Scan(
			&rec.OrderID, &rec.RestaurantID, &rec.OrderNumber,
			&rec.Customer.Name, &rec.Customer.Email, &rec.Customer.Phone, &rec.Customer.Address,
			&total, &rec.PaymentStatus, &rec.PaymentMethod,
			&rec.FulfillmentStatus, &rec.DeliveryMethod, &rec.ItemCount,
			&rec.ProductDetails, &rec.KitchenNotes,
			&times[0], &times[1], &times[2], &times[3], &times[4],
			&times[5], &times[6], &times[7],
			&rec.CancelReason, &prepTime, &times[8],
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if total.Valid {
			rec.TotalAmount = total.Decimal
		}
		if prepTime.Valid {
			minutes := int(prepTime.Int32)
			rec.PrepTimeMinutes = &minutes
		}

		rec.OrderDate = timePtr(times[0])
		rec.CreatedAt = timePtr(times[1])
		rec.UpdatedAt = timePtr(times[2])
		rec.ApprovedAt = timePtr(times[3])
		rec.ReadyAt = timePtr(times[4])
		rec.DispatchedAt = timePtr(times[5])
		rec.CompletedAt = timePtr(times[6])
		rec.CancelledAt = timePtr(times[7])
		rec.DeliveryDate = timePtr(times[8])

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return records, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time
	return &v
}
