package coupons

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFlatAmount DiscountType = "FLAT_AMOUNT"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFlatAmount
}

// Coupon represents a discount code. Codes are stored normalized to
// upper-case so lookups are case-insensitive.
type Coupon struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code       string       `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Type       DiscountType `json:"type" gorm:"not null;size:20"`
	Value      float64      `json:"value" gorm:"not null;check:value > 0"`
	UsageLimit *int         `json:"usage_limit,omitempty"`
	UsageCount int          `json:"usage_count" gorm:"not null;default:0"`
	ExpiryDate *time.Time   `json:"expiry_date,omitempty"`
	IsActive   bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Code = NormalizeCode(c.Code)
	return nil
}

// NormalizeCode canonicalizes a user-supplied coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsExpired reports whether the coupon is past its expiry date. A coupon
// without an expiry date never expires.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && now.After(*c.ExpiryDate)
}

// HasUsageRemaining reports whether the coupon can still be redeemed.
// A nil usage limit means unlimited redemptions.
func (c *Coupon) HasUsageRemaining() bool {
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}

// DiscountFor computes the discount this coupon grants on the given
// subtotal, clamped so it never exceeds the subtotal itself.
func (c *Coupon) DiscountFor(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}

	var discount float64
	switch c.Type {
	case DiscountTypePercentage:
		discount = subtotal * c.Value / 100
	case DiscountTypeFlatAmount:
		discount = c.Value
	}

	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}

// CreateCouponRequest is the admin payload for creating a coupon
type CreateCouponRequest struct {
	Code       string     `json:"code" binding:"required,min=3,max=50"`
	Type       string     `json:"type" binding:"required,oneof=PERCENTAGE FLAT_AMOUNT"`
	Value      float64    `json:"value" binding:"required,gt=0"`
	UsageLimit *int       `json:"usage_limit,omitempty" binding:"omitempty,gt=0"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

type CouponListQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedCoupons struct {
	Coupons    []Coupon `json:"coupons"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
}
