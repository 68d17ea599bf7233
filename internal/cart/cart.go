// Package cart derives order totals from cart contents and coupon state.
package cart

import (
	"math"

	"github.com/KikeGitHub/lealtix-main/internal/models"
)

// Totals is the priced summary of a cart.
type Totals struct {
	Subtotal float64
	Discount float64
	Total    float64
}

// Compute derives subtotal, discount and total.
//
// Subtotal is the sum of line totals. While a coupon is only validated,
// the discount is an estimate: percent coupons take rate/100 of the
// subtotal, fixed-amount coupons take the flat value, and BUY_X_GET_Y /
// FREE_PRODUCT report zero until the backend prices them at redemption.
// Once redeemed, the backend amounts are authoritative and used
// verbatim. Total never goes below zero.
func Compute(items []models.CartItem, applied *models.CouponValidation, redeemed *models.CouponRedemption) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	subtotal = round2(subtotal)

	if redeemed != nil {
		return Totals{
			Subtotal: subtotal,
			Discount: round2(redeemed.DiscountAmount),
			Total:    round2(redeemed.FinalAmount),
		}
	}

	var discount float64
	if applied != nil {
		switch applied.RewardType {
		case models.RewardPercentDiscount:
			discount = subtotal * applied.RewardValue / 100
		case models.RewardFixedAmount:
			discount = applied.RewardValue
		}
	}
	discount = round2(discount)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    round2(math.Max(0, subtotal-discount)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
