package coupons_test

import (
	"context"
	"testing"
	"time"

	"gatherly/internal/coupons"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	mock.Mock
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *coupons.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *mockCouponRepo) GetByCode(ctx context.Context, code string) (*coupons.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

func (m *mockCouponRepo) List(ctx context.Context, query coupons.CouponListQuery) ([]coupons.Coupon, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]coupons.Coupon), args.Get(1).(int64), args.Error(2)
}

func (m *mockCouponRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestValidateForOrder_ActiveCoupon(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := coupons.NewService(repo)
	ctx := context.Background()

	coupon := &coupons.Coupon{
		Code:     "SAVE20",
		Type:     coupons.DiscountTypePercentage,
		Value:    20,
		IsActive: true,
	}
	repo.On("GetByCode", ctx, "SAVE20").Return(coupon, nil)

	got, err := svc.ValidateForOrder(ctx, "SAVE20", 1000)
	require.NoError(t, err)
	assert.Equal(t, coupon, got)
}

func TestValidateForOrder_RejectionReasons(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	exhausted := 1

	cases := []struct {
		name    string
		coupon  *coupons.Coupon
		wantErr error
	}{
		{
			name:    "inactive",
			coupon:  &coupons.Coupon{Code: "OFF", IsActive: false},
			wantErr: coupons.ErrCouponInactive,
		},
		{
			name:    "expired",
			coupon:  &coupons.Coupon{Code: "OLD", IsActive: true, ExpiryDate: &yesterday},
			wantErr: coupons.ErrCouponExpired,
		},
		{
			name:    "limit reached",
			coupon:  &coupons.Coupon{Code: "FULL", IsActive: true, UsageLimit: &exhausted, UsageCount: 1},
			wantErr: coupons.ErrCouponLimitReached,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockCouponRepo{}
			svc := coupons.NewService(repo)
			ctx := context.Background()

			repo.On("GetByCode", ctx, tc.coupon.Code).Return(tc.coupon, nil)

			_, err := svc.ValidateForOrder(ctx, tc.coupon.Code, 1000)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidateForOrder_FreeOrderInapplicable(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := coupons.NewService(repo)

	_, err := svc.ValidateForOrder(context.Background(), "SAVE20", 0)
	assert.ErrorIs(t, err, coupons.ErrCouponInapplicable)

	repo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestCreateCoupon_RejectsOverHundredPercent(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := coupons.NewService(repo)

	_, err := svc.CreateCoupon(context.Background(), coupons.CreateCouponRequest{
		Code:  "TOOBIG",
		Type:  "PERCENTAGE",
		Value: 150,
	})
	assert.Error(t, err)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
