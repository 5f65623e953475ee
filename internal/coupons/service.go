package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponInactive     = errors.New("coupon is not active")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponLimitReached = errors.New("coupon usage limit reached")

	// ErrCouponInapplicable means the order has nothing to discount
	ErrCouponInapplicable = errors.New("coupon not applicable to a free order")
)

type Service interface {
	CreateCoupon(ctx context.Context, req CreateCouponRequest) (*Coupon, error)
	ListCoupons(ctx context.Context, query CouponListQuery) (*PaginatedCoupons, error)
	DeactivateCoupon(ctx context.Context, id uuid.UUID) error

	// ValidateForOrder checks that the coupon named by code may be applied
	// to an order with the given subtotal. Each failure mode has its own
	// sentinel so callers can report a specific rejection reason.
	ValidateForOrder(ctx context.Context, code string, subtotal float64) (*Coupon, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*Coupon, error) {
	coupon := &Coupon{
		Code:       NormalizeCode(req.Code),
		Type:       DiscountType(req.Type),
		Value:      req.Value,
		UsageLimit: req.UsageLimit,
		ExpiryDate: req.ExpiryDate,
		IsActive:   true,
	}

	if coupon.Type == DiscountTypePercentage && coupon.Value > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100")
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (s *service) ListCoupons(ctx context.Context, query CouponListQuery) (*PaginatedCoupons, error) {
	couponList, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	return &PaginatedCoupons{
		Coupons:    couponList,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func (s *service) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *service) ValidateForOrder(ctx context.Context, code string, subtotal float64) (*Coupon, error) {
	if subtotal <= 0 {
		return nil, ErrCouponInapplicable
	}

	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.IsExpired(time.Now().UTC()) {
		return nil, ErrCouponExpired
	}
	if !coupon.HasUsageRemaining() {
		return nil, ErrCouponLimitReached
	}

	return coupon, nil
}
