package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingNotPending means a conditional update guarded on
	// status = PENDING matched no row: the booking has already reached a
	// terminal state.
	ErrBookingNotPending = errors.New("booking is not pending")
)

type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetByOrderID(ctx context.Context, orderID string) (*Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// UpdatePricing rewrites the financial fields of a booking that is
	// still PENDING. Once a booking leaves PENDING its financials are
	// frozen, which the WHERE clause enforces.
	UpdatePricing(ctx context.Context, orderID string, totals OrderTotals, couponCode *string) error

	// CancelPending flips PENDING -> CANCELLED
	CancelPending(ctx context.Context, orderID string) error

	// FailStalePending marks PENDING bookings created before cutoff as
	// FAILED and returns how many rows were swept.
	FailStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var userBookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&userBookings).Error
	return userBookings, err
}

func (r *repository) UpdatePricing(ctx context.Context, orderID string, totals OrderTotals, couponCode *string) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("order_id = ? AND status = ?", orderID, StatusPending).
		Updates(map[string]interface{}{
			"discount_amount":     totals.DiscountAmount,
			"tax_amount":          totals.TaxAmount,
			"total_amount":        totals.TotalAmount,
			"applied_coupon_code": couponCode,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotPending
	}
	return nil
}

func (r *repository) CancelPending(ctx context.Context, orderID string) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("order_id = ? AND status = ?", orderID, StatusPending).
		Update("status", StatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotPending
	}
	return nil
}

func (r *repository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Update("status", StatusFailed)
	return result.RowsAffected, result.Error
}
