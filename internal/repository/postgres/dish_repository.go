package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	DishResource = "dish"
)

// DishRepository provides database operations for the dish catalog
type DishRepository struct {
	pool *pgxpool.Pool
}

// NewDishRepository creates a new DishRepository instance
func NewDishRepository(pool *pgxpool.Pool) *DishRepository {
	return &DishRepository{pool: pool}
}

// ListDishes returns the non-deleted dishes of a restaurant, ordered by sort order
// then recency.
func (r *DishRepository) ListDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error) {
	query := `
SELECT
  dish_id, restaurant_id, name,
  COALESCE(short_description, ''), COALESCE(detailed_description, ''), COALESCE(primary_image, ''),
  selling_price, COALESCE(discount_type, ''), COALESCE(discount_value, 0),
  COALESCE(food_type, ''), COALESCE(cuisine_type, ''), COALESCE(spice_level::text, ''),
  COALESCE(availability_status, ''), COALESCE(is_popular, false), COALESCE(is_customizable, false),
  COALESCE(tier_1, ''), COALESCE(tier_2, ''), COALESCE(tags::text, ''),
  COALESCE(customer_rating, 0), COALESCE(number_of_reviews, 0), COALESCE(mark_as, ''),
  COALESCE(is_active, false), COALESCE(sort_order, 0), created_at
FROM dishes
WHERE restaurant_id = $1
  AND NOT is_deleted`
	args := []any{filter.RestaurantID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += " AND tier_1 = $" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		args = append(args, repository.LikePattern(filter.Search))
		n := "$" + strconv.Itoa(len(args))
		query += " AND (name ILIKE " + n + " OR short_description ILIKE " + n + " OR tags::text ILIKE " + n + ")"
	}

	query += " ORDER BY sort_order ASC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dishes for restaurant %d: %w", filter.RestaurantID, err)
	}
	defer rows.Close()

	var dishes []domain.Dish
	for rows.Next() {
		var d domain.Dish
		if err := rows.Scan(
			&d.ID, &d.RestaurantID, &d.Name,
			&d.Description, &d.DetailedDescription, &d.Image,
			&d.Price, &d.DiscountType, &d.DiscountValue,
			&d.FoodType, &d.CuisineType, &d.SpiceLevel,
			&d.AvailabilityStatus, &d.IsPopular, &d.IsCustomizable,
			&d.Category, &d.Subcategory, &d.Tags,
			&d.Rating, &d.Reviews, &d.MarkAs,
			&d.IsActive, &d.SortOrder, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dish for restaurant %d: %w", filter.RestaurantID, err)
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dishes for restaurant %d: %w", filter.RestaurantID, err)
	}

	return dishes, nil
}

// ListCategories returns the distinct categories of active dishes with their counts.
func (r *DishRepository) ListCategories(ctx context.Context, restaurantID int64) ([]domain.Category, error) {
	const query = `
SELECT tier_1, COUNT(*)
FROM dishes
WHERE restaurant_id = $1
  AND NOT is_deleted
  AND is_active
  AND tier_1 IS NOT NULL
  AND tier_1 <> ''
GROUP BY tier_1
ORDER BY tier_1
`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query categories for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category for restaurant %d: %w", restaurantID, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories for restaurant %d: %w", restaurantID, err)
	}

	return categories, nil
}

// SetAvailability marks a single dish available or sold out.
func (r *DishRepository) SetAvailability(ctx context.Context, restaurantID, dishID int64, available bool) error {
	const query = `
UPDATE dishes
SET availability_status = $1, updated_at = NOW()
WHERE dish_id = $2 AND restaurant_id = $3
`
	tag, err := r.pool.Exec(ctx, query, domain.AvailabilityStatusFor(available), dishID, restaurantID)
	if err != nil {
		return fmt.Errorf("update availability of dish %d: %w", dishID, err)
	}

	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: DishResource,
			Key:      "id",
			Value:    strconv.FormatInt(dishID, 10),
		}
	}

	return nil
}

// BulkSetAvailability applies one availability value to a set of dishes in a single
// statement and returns the number of dishes updated.
func (r *DishRepository) BulkSetAvailability(
	ctx context.Context,
	restaurantID int64,
	dishIDs []int64,
	available bool,
) (int64, error) {
	if len(dishIDs) == 0 {
		return 0, nil
	}

	const query = `
UPDATE dishes
SET availability_status = $1, updated_at = NOW()
WHERE restaurant_id = $2 AND dish_id = ANY($3)
`
	tag, err := r.pool.Exec(ctx, query, domain.AvailabilityStatusFor(available), restaurantID, dishIDs)
	if err != nil {
		return 0, fmt.Errorf("bulk update availability for restaurant %d: %w", restaurantID, err)
	}

	return tag.RowsAffected(), nil
}
