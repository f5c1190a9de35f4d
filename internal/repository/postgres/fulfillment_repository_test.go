package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

type testFulfillment struct {
	restaurantID int64
	number       string
	status       string
	total        string
	prepTime     *int
	createdAt    time.Time
}

func intPtr(v int) *int { return &v }

func TestFulfillmentRepository_ListOrders(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	now := time.Now().UTC()
	setupTestFulfillments(t, pool, []testFulfillment{
		{restaurantID: 1, number: "A-1", status: "pending", total: "10.00", createdAt: now.Add(-3 * time.Hour)},
		{restaurantID: 1, number: "A-2", status: "completed", total: "20.00", createdAt: now.Add(-2 * time.Hour)},
		{restaurantID: 1, number: "A-3", status: "pending", total: "30.00", createdAt: now.Add(-1 * time.Hour)},
		{restaurantID: 2, number: "B-1", status: "pending", total: "40.00", createdAt: now},
	})
	defer cleanupTestData(t, pool)

	testCases := map[string]struct {
		filter          domain.FulfillmentFilter
		expectedNumbers []string
	}{
		"should list newest first": {
			filter:          domain.FulfillmentFilter{RestaurantID: 1, Limit: 100},
			expectedNumbers: []string{"A-3", "A-2", "A-1"},
		},
		"should filter by status": {
			filter:          domain.FulfillmentFilter{RestaurantID: 1, Status: "pending", Limit: 100},
			expectedNumbers: []string{"A-3", "A-1"},
		},
		"should apply limit": {
			filter:          domain.FulfillmentFilter{RestaurantID: 1, Limit: 1},
			expectedNumbers: []string{"A-3"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := NewFulfillmentRepository(pool)
			records, err := repo.ListOrders(context.Background(), tc.filter)
			require.NoError(t, err)

			numbers := make([]string, 0, len(records))
			for _, r := range records {
				numbers = append(numbers, r.OrderNumber)
			}
			assert.Equal(t, tc.expectedNumbers, numbers)
		})
	}
}

func TestFulfillmentRepository_GetOrderByNumber(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	setupTestFulfillments(t, pool, []testFulfillment{
		{restaurantID: 1, number: "A-1", status: "pending", total: "42.50", createdAt: time.Now()},
	})
	defer cleanupTestData(t, pool)

	repo := NewFulfillmentRepository(pool)

	record, err := repo.GetOrderByNumber(context.Background(), 1, "A-1")
	require.NoError(t, err)
	assert.Equal(t, "A-1", record.OrderNumber)
	assert.True(t, decimal.RequireFromString("42.50").Equal(record.TotalAmount))

	_, err = repo.GetOrderByNumber(context.Background(), 2, "A-1")
	var notFound *repository.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestFulfillmentRepository_TransitionStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testCases := map[string]struct {
		transition       domain.FulfillmentTransition
		expectedNotFound bool
		verify           func(t *testing.T, r *domain.FulfillmentRecord)
	}{
		"should stamp approval and prep time": {
			transition: domain.FulfillmentTransition{
				RestaurantID: 1, OrderNumber: "A-1", Status: domain.FulfillmentApproved,
				UpdatedBy: "owner@bistro.test", PrepTimeMinutes: intPtr(15), At: at,
			},
			verify: func(t *testing.T, r *domain.FulfillmentRecord) {
				assert.Equal(t, domain.FulfillmentApproved, r.FulfillmentStatus)
				require.NotNil(t, r.ApprovedAt)
				assert.True(t, at.Equal(*r.ApprovedAt))
				assert.Equal(t, intPtr(15), r.PrepTimeMinutes)
			},
		},
		"should stamp cancellation with reason": {
			transition: domain.FulfillmentTransition{
				RestaurantID: 1, OrderNumber: "A-1", Status: domain.FulfillmentCancelled,
				CancelReason: "out of stock", At: at,
			},
			verify: func(t *testing.T, r *domain.FulfillmentRecord) {
				assert.Equal(t, domain.FulfillmentCancelled, r.FulfillmentStatus)
				require.NotNil(t, r.CancelledAt)
				assert.Equal(t, "out of stock", r.CancelReason)
			},
		},
		"should only update status without stage columns": {
			transition: domain.FulfillmentTransition{
				RestaurantID: 1, OrderNumber: "A-1", Status: domain.FulfillmentPreparing, At: at,
			},
			verify: func(t *testing.T, r *domain.FulfillmentRecord) {
				assert.Equal(t, domain.FulfillmentPreparing, r.FulfillmentStatus)
				assert.Nil(t, r.ApprovedAt)
			},
		},
		"should return not found for unknown order": {
			transition: domain.FulfillmentTransition{
				RestaurantID: 1, OrderNumber: "missing", Status: domain.FulfillmentReady, At: at,
			},
			expectedNotFound: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			setupTestFulfillments(t, pool, []testFulfillment{
				{restaurantID: 1, number: "A-1", status: "pending", total: "10.00", createdAt: at.Add(-time.Hour)},
			})
			defer cleanupTestData(t, pool)

			repo := NewFulfillmentRepository(pool)
			err := repo.TransitionStatus(context.Background(), tc.transition)

			if tc.expectedNotFound {
				var notFound *repository.NotFoundError
				assert.True(t, errors.As(err, &notFound))
				return
			}

			require.NoError(t, err)
			record, err := repo.GetOrderByNumber(context.Background(), 1, "A-1")
			require.NoError(t, err)
			tc.verify(t, record)
		})
	}
}

func TestFulfillmentRepository_Reporting(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	setupTestFulfillments(t, pool, []testFulfillment{
		{restaurantID: 1, number: "A-1", status: "completed", total: "42.50", prepTime: intPtr(10), createdAt: day.Add(9 * time.Hour)},
		{restaurantID: 1, number: "A-2", status: "cancelled", total: "10.00", prepTime: intPtr(99), createdAt: day.Add(10 * time.Hour)},
		{restaurantID: 1, number: "A-3", status: "ready", total: "5.00", prepTime: intPtr(20), createdAt: day.Add(11 * time.Hour)},
		{restaurantID: 1, number: "A-4", status: "completed", total: "100.00", createdAt: day.Add(-time.Hour)},
	})
	defer cleanupTestData(t, pool)

	repo := NewFulfillmentRepository(pool)
	from, to := day, day.Add(24*time.Hour-time.Nanosecond)

	totals, err := repo.StatusTotals(context.Background(), 1, from, to)
	require.NoError(t, err)

	byStatus := make(map[string]domain.StatusTotal)
	for _, st := range totals {
		byStatus[st.Status] = st
	}
	assert.Len(t, byStatus, 3)
	assert.Equal(t, 1, byStatus["completed"].Count)
	assert.True(t, decimal.RequireFromString("42.50").Equal(byStatus["completed"].Amount))
	assert.True(t, decimal.RequireFromString("10.00").Equal(byStatus["cancelled"].Amount))

	avg, ok, err := repo.AveragePrepTime(context.Background(), 1, from, to)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 15.0, avg, 0.001)

	_, ok, err = repo.AveragePrepTime(context.Background(), 2, from, to)
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err := repo.ListReportRows(context.Background(), 1, from, to)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func setupTestFulfillments(t *testing.T, pool *pgxpool.Pool, records []testFulfillment) {
	for _, r := range records {
		_, err := pool.Exec(
			context.Background(),
			`INSERT INTO order_management (restaurant_id, order_number, fulfillment_status, total_amount, prep_time_minutes, created_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
			r.restaurantID, r.number, r.status, r.total, r.prepTime, r.createdAt,
		)
		require.NoError(t, err)
	}
}
