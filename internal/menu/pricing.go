package menu

import (
	"github.com/shopspring/decimal"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// FinalPrice applies a dish discount to its base price. Flat discounts subtract the
// value, percentage discounts scale by (1 - value/100). The result is rounded half
// away from zero to 2 decimal places and never negative.
func FinalPrice(price decimal.Decimal, discountType string, discountValue decimal.Decimal) decimal.Decimal {
	final := price

	switch discountType {
	case domain.DiscountFlat:
		final = price.Sub(discountValue)
	case domain.DiscountPercentage:
		final = price.Mul(decimal.NewFromInt(1).Sub(discountValue.Div(hundred)))
	}

	if final.IsNegative() {
		return decimal.Zero
	}

	return final.Round(2)
}
