package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

func TestFinalPrice(t *testing.T) {
	testCases := map[string]struct {
		price         string
		discountType  string
		discountValue string
		expected      string
	}{
		"should apply percentage discount": {
			price: "20.00", discountType: domain.DiscountPercentage, discountValue: "10", expected: "18.00",
		},
		"should apply flat discount": {
			price: "20.00", discountType: domain.DiscountFlat, discountValue: "5", expected: "15.00",
		},
		"should keep price without discount": {
			price: "12.50", discountType: "", discountValue: "3", expected: "12.50",
		},
		"should floor flat discount at zero": {
			price: "4.00", discountType: domain.DiscountFlat, discountValue: "5", expected: "0",
		},
		"should round half away from zero": {
			price: "9.99", discountType: domain.DiscountPercentage, discountValue: "15", expected: "8.49",
		},
		"should round up at exact half cent": {
			price: "0.25", discountType: domain.DiscountPercentage, discountValue: "50", expected: "0.13",
		},
		"should ignore unknown discount type": {
			price: "10.00", discountType: "bogo", discountValue: "50", expected: "10.00",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := FinalPrice(
				decimal.RequireFromString(tc.price),
				tc.discountType,
				decimal.RequireFromString(tc.discountValue),
			)

			assert.True(t, decimal.RequireFromString(tc.expected).Equal(got), "got %s", got)
		})
	}
}

func TestNewDishView(t *testing.T) {
	testCases := map[string]struct {
		dish              domain.Dish
		expectedAvailable bool
		expectedFinal     float64
	}{
		"should be available when status is available and dish is active": {
			dish: domain.Dish{
				Price:              decimal.RequireFromString("20.00"),
				DiscountType:       domain.DiscountPercentage,
				DiscountValue:      decimal.RequireFromString("10"),
				AvailabilityStatus: domain.AvailabilityAvailable,
				IsActive:           true,
			},
			expectedAvailable: true,
			expectedFinal:     18,
		},
		"should be unavailable when sold out": {
			dish: domain.Dish{
				Price:              decimal.RequireFromString("20.00"),
				AvailabilityStatus: domain.AvailabilitySoldOut,
				IsActive:           true,
			},
			expectedFinal: 20,
		},
		"should be unavailable when inactive": {
			dish: domain.Dish{
				Price:              decimal.RequireFromString("20.00"),
				DiscountType:       domain.DiscountFlat,
				DiscountValue:      decimal.RequireFromString("5"),
				AvailabilityStatus: domain.AvailabilityAvailable,
			},
			expectedFinal: 15,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			view := NewDishView(&tc.dish)

			assert.Equal(t, tc.expectedAvailable, view.Available)
			assert.InDelta(t, tc.expectedFinal, view.FinalPrice, 0.0001)
		})
	}
}
