package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

// memoryDishStore keeps dishes in memory so availability changes are visible to
// subsequent listings.
type memoryDishStore struct {
	mock.Mock
	dishes []domain.Dish
}

func (m *memoryDishStore) ListDishes(_ context.Context, filter domain.DishFilter) ([]domain.Dish, error) {
	var out []domain.Dish
	for _, d := range m.dishes {
		if d.RestaurantID == filter.RestaurantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryDishStore) ListCategories(ctx context.Context, restaurantID int64) ([]domain.Category, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *memoryDishStore) SetAvailability(_ context.Context, restaurantID, dishID int64, available bool) error {
	for i := range m.dishes {
		if m.dishes[i].ID == dishID && m.dishes[i].RestaurantID == restaurantID {
			m.dishes[i].AvailabilityStatus = domain.AvailabilityStatusFor(available)
			return nil
		}
	}
	return &repository.NotFoundError{Resource: "dish", Key: "id", Value: "x"}
}

func (m *memoryDishStore) BulkSetAvailability(
	ctx context.Context,
	restaurantID int64,
	dishIDs []int64,
	available bool,
) (int64, error) {
	args := m.Called(ctx, restaurantID, dishIDs, available)
	return args.Get(0).(int64), args.Error(1)
}

func newDish(id int64) domain.Dish {
	return domain.Dish{
		ID:                 id,
		RestaurantID:       1,
		Name:               "Margherita",
		Price:              decimal.RequireFromString("12.50"),
		AvailabilityStatus: domain.AvailabilityAvailable,
		IsActive:           true,
	}
}

func TestService_SetAvailabilityThenList(t *testing.T) {
	store := &memoryDishStore{dishes: []domain.Dish{newDish(1)}}
	svc := NewService(store)

	require.NoError(t, svc.SetAvailability(context.Background(), 1, 1, false))

	views, err := svc.List(context.Background(), domain.DishFilter{RestaurantID: 1})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Available)
	assert.Equal(t, domain.AvailabilitySoldOut, views[0].AvailabilityStatus)

	err = svc.SetAvailability(context.Background(), 2, 1, true)
	var notFound *repository.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestService_List_Empty(t *testing.T) {
	views, err := NewService(&memoryDishStore{}).List(context.Background(), domain.DishFilter{RestaurantID: 1})

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestService_BulkSetAvailability(t *testing.T) {
	testCases := map[string]struct {
		ids           []int64
		expectedIDs   []int64
		storeResult   int64
		storeErr      error
		expectedError string
	}{
		"should pass unique ids in one call": {
			ids:         []int64{3, 1, 3, 2},
			expectedIDs: []int64{3, 1, 2},
			storeResult: 3,
		},
		"should wrap store errors": {
			ids:           []int64{1},
			expectedIDs:   []int64{1},
			storeErr:      errors.New("deadlock"),
			expectedError: "bulk set availability: deadlock",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			store := &memoryDishStore{}
			store.On("BulkSetAvailability", mock.Anything, int64(1), tc.expectedIDs, false).
				Return(tc.storeResult, tc.storeErr).Once()

			updated, err := NewService(store).BulkSetAvailability(context.Background(), 1, tc.ids, false)

			if tc.expectedError != "" {
				assert.EqualError(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.storeResult, updated)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestService_Categories(t *testing.T) {
	store := &memoryDishStore{}
	store.On("ListCategories", mock.Anything, int64(1)).
		Return([]domain.Category{{Name: "Pizza", Count: 2}}, nil).Once()

	categories, err := NewService(store).Categories(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{Name: "Pizza", Count: 2}}, categories)
}
