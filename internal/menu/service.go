package menu

import (
	"context"
	"fmt"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

// DishStore is the relational catalog used by the menu service.
type DishStore interface {
	ListDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error)
	ListCategories(ctx context.Context, restaurantID int64) ([]domain.Category, error)
	SetAvailability(ctx context.Context, restaurantID, dishID int64, available bool) error
	BulkSetAvailability(ctx context.Context, restaurantID int64, dishIDs []int64, available bool) (int64, error)
}

// Service serves the restaurant catalog to the kitchen app.
type Service struct {
	store DishStore
}

// NewService creates a new menu Service
func NewService(store DishStore) *Service {
	return &Service{store: store}
}

// List returns the priced dish views matching filter.
func (s *Service) List(ctx context.Context, filter domain.DishFilter) ([]DishView, error) {
	dishes, err := s.store.ListDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}

	return NewDishViews(dishes), nil
}

// Categories returns the active categories of a restaurant.
func (s *Service) Categories(ctx context.Context, restaurantID int64) ([]domain.Category, error) {
	categories, err := s.store.ListCategories(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// SetAvailability marks one dish available or sold out.
func (s *Service) SetAvailability(ctx context.Context, restaurantID, dishID int64, available bool) error {
	if err := s.store.SetAvailability(ctx, restaurantID, dishID, available); err != nil {
		return fmt.Errorf("set availability of dish %d: %w", dishID, err)
	}

	return nil
}

// BulkSetAvailability marks a set of dishes available or sold out and returns how
// many were updated. Duplicate ids are collapsed.
func (s *Service) BulkSetAvailability(ctx context.Context, restaurantID int64, dishIDs []int64, available bool) (int64, error) {
	seen := make(map[int64]bool, len(dishIDs))
	unique := make([]int64, 0, len(dishIDs))
	for _, id := range dishIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	updated, err := s.store.BulkSetAvailability(ctx, restaurantID, unique, available)
	if err != nil {
		return 0, fmt.Errorf("bulk set availability: %w", err)
	}

	return updated, nil
}
