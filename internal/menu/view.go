package menu

import (
	"time"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

// DishView is the kitchen app representation of a dish.
type DishView struct {
	ID                  int64     `json:"id"`
	RestaurantID        int64     `json:"restaurant_id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	DetailedDescription string    `json:"detailed_description"`
	Image               string    `json:"image"`
	Price               float64   `json:"price"`
	DiscountType        string    `json:"discount_type,omitempty"`
	DiscountValue       float64   `json:"discount_value"`
	FinalPrice          float64   `json:"final_price"`
	FoodType            string    `json:"food_type"`
	CuisineType         string    `json:"cuisine_type"`
	SpiceLevel          string    `json:"spice_level"`
	AvailabilityStatus  string    `json:"availability_status"`
	Available           bool      `json:"available"`
	IsPopular           bool      `json:"is_popular"`
	IsCustomizable      bool      `json:"is_customizable"`
	Category            string    `json:"category"`
	Subcategory         string    `json:"subcategory"`
	Tags                string    `json:"tags"`
	Rating              float64   `json:"rating"`
	Reviews             int       `json:"reviews"`
	MarkAs              string    `json:"mark_as"`
	IsActive            bool      `json:"is_active"`
	SortOrder           int       `json:"sort_order"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewDishView derives the priced, availability-resolved view of d.
func NewDishView(d *domain.Dish) DishView {
	return DishView{
		ID:                  d.ID,
		RestaurantID:        d.RestaurantID,
		Name:                d.Name,
		Description:         d.Description,
		DetailedDescription: d.DetailedDescription,
		Image:               d.Image,
		Price:               d.Price.Round(2).InexactFloat64(),
		DiscountType:        d.DiscountType,
		DiscountValue:       d.DiscountValue.InexactFloat64(),
		FinalPrice:          FinalPrice(d.Price, d.DiscountType, d.DiscountValue).InexactFloat64(),
		FoodType:            d.FoodType,
		CuisineType:         d.CuisineType,
		SpiceLevel:          d.SpiceLevel,
		AvailabilityStatus:  d.AvailabilityStatus,
		Available:           d.AvailabilityStatus == domain.AvailabilityAvailable && d.IsActive,
		IsPopular:           d.IsPopular,
		IsCustomizable:      d.IsCustomizable,
		Category:            d.Category,
		Subcategory:         d.Subcategory,
		Tags:                d.Tags,
		Rating:              d.Rating.InexactFloat64(),
		Reviews:             d.Reviews,
		MarkAs:              d.MarkAs,
		IsActive:            d.IsActive,
		SortOrder:           d.SortOrder,
		CreatedAt:           d.CreatedAt,
	}
}

// NewDishViews maps dishes to views, never returning nil.
func NewDishViews(dishes []domain.Dish) []DishView {
	views := make([]DishView, 0, len(dishes))
	for i := range dishes {
		views = append(views, NewDishView(&dishes[i]))
	}

	return views
}
