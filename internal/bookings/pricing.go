package bookings

import (
	"math"

	"gatherly/internal/coupons"
)

// TaxRate is the fixed tax applied to the post-discount amount
const TaxRate = 0.10

// OrderTotals is the financial breakdown of an order
type OrderTotals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// ComputeOrderTotals derives the full financial breakdown for an item list
// and an optional coupon. Pure function: same inputs, same outputs.
//
// The discount is clamped to [0, subtotal]. Tax is computed on the
// post-discount amount and rounded to the nearest currency unit, so
// total = subtotal - discount + tax holds exactly.
func ComputeOrderTotals(items []OrderItem, coupon *coupons.Coupon) OrderTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	var discount float64
	if coupon != nil {
		discount = coupon.DiscountFor(subtotal)
	}

	taxable := subtotal - discount
	tax := math.Round(taxable * TaxRate)

	return OrderTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    taxable + tax,
	}
}
