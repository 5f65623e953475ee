package coupons_test

import (
	"testing"
	"time"

	"gatherly/internal/coupons"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE20", coupons.NormalizeCode("  save20 "))
	assert.Equal(t, "FLAT100", coupons.NormalizeCode("Flat100"))
}

func TestDiscountFor_Percentage(t *testing.T) {
	coupon := coupons.Coupon{Type: coupons.DiscountTypePercentage, Value: 20}

	assert.Equal(t, 200.0, coupon.DiscountFor(1000))
	assert.Equal(t, 0.0, coupon.DiscountFor(0))
	assert.Equal(t, 0.0, coupon.DiscountFor(-50))
}

func TestDiscountFor_FlatAmountClamped(t *testing.T) {
	coupon := coupons.Coupon{Type: coupons.DiscountTypeFlatAmount, Value: 100}

	assert.Equal(t, 100.0, coupon.DiscountFor(1000))
	// Never more than the subtotal itself
	assert.Equal(t, 60.0, coupon.DiscountFor(60))
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	assert.False(t, (&coupons.Coupon{}).IsExpired(now))
	assert.True(t, (&coupons.Coupon{ExpiryDate: &yesterday}).IsExpired(now))
	assert.False(t, (&coupons.Coupon{ExpiryDate: &tomorrow}).IsExpired(now))
}

func TestHasUsageRemaining(t *testing.T) {
	limit := 2

	assert.True(t, (&coupons.Coupon{}).HasUsageRemaining())
	assert.True(t, (&coupons.Coupon{UsageLimit: &limit, UsageCount: 1}).HasUsageRemaining())
	assert.False(t, (&coupons.Coupon{UsageLimit: &limit, UsageCount: 2}).HasUsageRemaining())
}
