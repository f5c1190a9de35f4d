package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AvailabilityAvailable = "available"
	AvailabilitySoldOut   = "sold_out"

	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

// Dish is a catalog entry from the relational store.
type Dish struct {
	ID                  int64
	RestaurantID        int64
	Name                string
	Description         string
	DetailedDescription string
	Image               string
	Price               decimal.Decimal
	DiscountType        string
	DiscountValue       decimal.Decimal
	FoodType            string
	CuisineType         string
	SpiceLevel          string
	AvailabilityStatus  string
	IsPopular           bool
	IsCustomizable      bool
	Category            string
	Subcategory         string
	Tags                string
	Rating              decimal.Decimal
	Reviews             int
	MarkAs              string
	IsActive            bool
	SortOrder           int
	CreatedAt           time.Time
}

// DishFilter selects dishes of one restaurant.
type DishFilter struct {
	RestaurantID int64
	Category     string
	Search       string
}

// Category is a distinct menu category with the number of active dishes in it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AvailabilityStatusFor maps an availability flag to its stored value.
func AvailabilityStatusFor(available bool) string {
	if available {
		return AvailabilityAvailable
	}

	return AvailabilitySoldOut
}
