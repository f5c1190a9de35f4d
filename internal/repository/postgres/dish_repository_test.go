package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

type testDish struct {
	restaurantID int64
	name         string
	category     string
	price        string
	active       bool
	deleted      bool
	sortOrder    int
}

func TestDishRepository_ListDishes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	dishes := []testDish{
		{restaurantID: 1, name: "Margherita", category: "Pizza", price: "12.50", active: true, sortOrder: 2},
		{restaurantID: 1, name: "100% Veg Burger", category: "Burgers", price: "9.00", active: true, sortOrder: 1},
		{restaurantID: 1, name: "Old Special", category: "Pizza", price: "8.00", active: true, deleted: true},
		{restaurantID: 2, name: "Other Pizza", category: "Pizza", price: "10.00", active: true},
	}

	testCases := map[string]struct {
		filter        domain.DishFilter
		expectedNames []string
	}{
		"should list non-deleted dishes ordered by sort order": {
			filter:        domain.DishFilter{RestaurantID: 1},
			expectedNames: []string{"100% Veg Burger", "Margherita"},
		},
		"should filter by category": {
			filter:        domain.DishFilter{RestaurantID: 1, Category: "Pizza"},
			expectedNames: []string{"Margherita"},
		},
		"should search case-insensitively": {
			filter:        domain.DishFilter{RestaurantID: 1, Search: "marg"},
			expectedNames: []string{"Margherita"},
		},
		"should treat wildcard characters in search literally": {
			filter:        domain.DishFilter{RestaurantID: 1, Search: "100%"},
			expectedNames: []string{"100% Veg Burger"},
		},
		"should return nothing for unknown restaurant": {
			filter:        domain.DishFilter{RestaurantID: 99},
			expectedNames: nil,
		},
	}

	setupTestDishes(t, pool, dishes)
	defer cleanupTestData(t, pool)

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := NewDishRepository(pool)
			result, err := repo.ListDishes(context.Background(), tc.filter)
			require.NoError(t, err)

			var names []string
			for _, d := range result {
				names = append(names, d.Name)
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

func TestDishRepository_ListCategories(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	setupTestDishes(t, pool, []testDish{
		{restaurantID: 1, name: "Margherita", category: "Pizza", price: "12.50", active: true},
		{restaurantID: 1, name: "Pepperoni", category: "Pizza", price: "13.50", active: true},
		{restaurantID: 1, name: "Cheeseburger", category: "Burgers", price: "9.00", active: true},
		{restaurantID: 1, name: "Hidden", category: "Salads", price: "7.00", active: false},
	})
	defer cleanupTestData(t, pool)

	repo := NewDishRepository(pool)
	categories, err := repo.ListCategories(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{Name: "Burgers", Count: 1}, {Name: "Pizza", Count: 2}}, categories)
}

func TestDishRepository_SetAvailability(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	testCases := map[string]struct {
		restaurantID     int64
		dishID           int64
		available        bool
		expectedStatus   string
		expectedNotFound bool
	}{
		"should mark dish sold out": {
			restaurantID:   1,
			dishID:         1,
			available:      false,
			expectedStatus: domain.AvailabilitySoldOut,
		},
		"should mark dish available": {
			restaurantID:   1,
			dishID:         1,
			available:      true,
			expectedStatus: domain.AvailabilityAvailable,
		},
		"should not update dish of another restaurant": {
			restaurantID:     2,
			dishID:           1,
			expectedNotFound: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			setupTestDishes(t, pool, []testDish{
				{restaurantID: 1, name: "Margherita", category: "Pizza", price: "12.50", active: true},
			})
			defer cleanupTestData(t, pool)

			repo := NewDishRepository(pool)
			err := repo.SetAvailability(context.Background(), tc.restaurantID, tc.dishID, tc.available)

			if tc.expectedNotFound {
				var notFound *repository.NotFoundError
				assert.True(t, errors.As(err, &notFound))
				return
			}

			require.NoError(t, err)
			var status string
			require.NoError(t, pool.QueryRow(
				context.Background(),
				"SELECT availability_status FROM dishes WHERE dish_id = $1", tc.dishID,
			).Scan(&status))
			assert.Equal(t, tc.expectedStatus, status)
		})
	}
}

func TestDishRepository_BulkSetAvailability(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	setupTestDishes(t, pool, []testDish{
		{restaurantID: 1, name: "A", price: "1.00", active: true},
		{restaurantID: 1, name: "B", price: "1.00", active: true},
		{restaurantID: 1, name: "C", price: "1.00", active: true},
		{restaurantID: 2, name: "D", price: "1.00", active: true},
	})
	defer cleanupTestData(t, pool)

	repo := NewDishRepository(pool)

	updated, err := repo.BulkSetAvailability(context.Background(), 1, []int64{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = repo.BulkSetAvailability(context.Background(), 1, []int64{3, 4}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = repo.BulkSetAvailability(context.Background(), 1, nil, true)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func setupTestDishes(t *testing.T, pool *pgxpool.Pool, dishes []testDish) {
	for _, d := range dishes {
		_, err := pool.Exec(
			context.Background(),
			`INSERT INTO dishes (restaurant_id, name, tier_1, selling_price, is_active, is_deleted, sort_order)
VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5, $6, $7)`,
			d.restaurantID, d.name, d.category, d.price, d.active, d.deleted, d.sortOrder,
		)
		require.NoError(t, err)
	}
}
