package bookings

import (
	"context"
	"errors"
	"fmt"

	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrEventNotBookable     = errors.New("event is not open for booking")
	ErrUnknownPassType      = errors.New("unknown pass type for this event")
	ErrAttendeeCountInvalid = errors.New("attendee count does not match selected passes")
	ErrAttendeePassInvalid  = errors.New("attendee pass type not present in order items")
)

type Service interface {
	CreateBooking(ctx context.Context, userID *uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, orderID string) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingResponse, error)
	CancelBooking(ctx context.Context, orderID string) error

	// ApplyCoupon attaches, replaces, or (with an empty code) clears the
	// coupon on a PENDING booking, recomputing totals from the original
	// item snapshot so discounts never stack.
	ApplyCoupon(ctx context.Context, orderID string, code string) (*BookingResponse, error)
}

type service struct {
	repo      Repository
	eventRepo events.Repository
	couponSvc coupons.Service
	log       *logger.Logger
}

func NewService(repo Repository, eventRepo events.Repository, couponSvc coupons.Service, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		eventRepo: eventRepo,
		couponSvc: couponSvc,
		log:       log,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID *uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	event, err := s.eventRepo.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsBookable() {
		return nil, ErrEventNotBookable
	}

	// Snapshot catalog prices into the order items. Prices are frozen
	// here; confirmation never re-reads the catalog.
	items := make(OrderItemList, 0, len(req.Items))
	for _, item := range req.Items {
		pass, ok := event.PassByType(item.PassType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPassType, item.PassType)
		}
		items = append(items, OrderItem{
			PassType: pass.Type,
			Quantity: item.Quantity,
			Price:    pass.Price,
		})
	}

	persons := PersonsForItems(items)
	if len(req.Attendees) != persons {
		return nil, fmt.Errorf("%w: expected %d attendees, got %d",
			ErrAttendeeCountInvalid, persons, len(req.Attendees))
	}

	itemPassTypes := make(map[string]bool, len(items))
	for _, item := range items {
		itemPassTypes[item.PassType] = true
	}

	attendees := make(AttendeeList, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		if !itemPassTypes[a.PassType] {
			return nil, fmt.Errorf("%w: %s", ErrAttendeePassInvalid, a.PassType)
		}
		attendees = append(attendees, Attendee{
			FullName: a.FullName,
			Email:    a.Email,
			Phone:    a.Phone,
			Gender:   a.Gender,
			PassType: a.PassType,
		})
	}

	var coupon *coupons.Coupon
	var couponCode *string
	if req.CouponCode != "" {
		coupon, err = s.couponSvc.ValidateForOrder(ctx, req.CouponCode, subtotalOf(items))
		if err != nil {
			return nil, fmt.Errorf("coupon rejected: %w", err)
		}
		normalized := coupons.NormalizeCode(req.CouponCode)
		couponCode = &normalized
	}

	totals := ComputeOrderTotals(items, coupon)

	booking := &Booking{
		OrderID:           GenerateOrderID(),
		EventID:           event.ID,
		UserID:            userID,
		Attendees:         attendees,
		Items:             items,
		Subtotal:          totals.Subtotal,
		DiscountAmount:    totals.DiscountAmount,
		TaxAmount:         totals.TaxAmount,
		TotalAmount:       totals.TotalAmount,
		AppliedCouponCode: couponCode,
		Status:            StatusPending,
		RedirectURL:       req.RedirectURL,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.OrderID, booking.EventID.String())

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, orderID string) (*BookingResponse, error) {
	booking, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingResponse, error) {
	userBookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}

	responses := make([]BookingResponse, 0, len(userBookings))
	for i := range userBookings {
		responses = append(responses, userBookings[i].ToResponse())
	}
	return responses, nil
}

func (s *service) CancelBooking(ctx context.Context, orderID string) error {
	return s.repo.CancelPending(ctx, orderID)
}

func (s *service) ApplyCoupon(ctx context.Context, orderID string, code string) (*BookingResponse, error) {
	booking, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if booking.Status != StatusPending {
		return nil, ErrBookingNotPending
	}

	var coupon *coupons.Coupon
	var couponCode *string
	if code != "" {
		coupon, err = s.couponSvc.ValidateForOrder(ctx, code, booking.Subtotal)
		if err != nil {
			return nil, err
		}
		normalized := coupons.NormalizeCode(code)
		couponCode = &normalized
	}

	// Always recompute from the original item snapshot: replacing a
	// coupon must not stack on a previously discounted total, and a nil
	// coupon restores the undiscounted figures.
	totals := ComputeOrderTotals(booking.Items, coupon)

	if err := s.repo.UpdatePricing(ctx, orderID, totals, couponCode); err != nil {
		return nil, err
	}

	booking.DiscountAmount = totals.DiscountAmount
	booking.TaxAmount = totals.TaxAmount
	booking.TotalAmount = totals.TotalAmount
	booking.AppliedCouponCode = couponCode

	resp := booking.ToResponse()
	return &resp, nil
}

func subtotalOf(items []OrderItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}
