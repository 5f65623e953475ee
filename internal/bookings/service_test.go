package bookings_test

import (
	"context"
	"testing"
	"time"

	"gatherly/internal/bookings"
	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubBookingRepo struct {
	mock.Mock
}

func (m *stubBookingRepo) CreateBooking(ctx context.Context, booking *bookings.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *stubBookingRepo) GetByOrderID(ctx context.Context, orderID string) (*bookings.Booking, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *stubBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookings.Booking), args.Error(1)
}

func (m *stubBookingRepo) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]bookings.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookings.Booking), args.Error(1)
}

func (m *stubBookingRepo) UpdatePricing(ctx context.Context, orderID string, totals bookings.OrderTotals, couponCode *string) error {
	return m.Called(ctx, orderID, totals, couponCode).Error(0)
}

func (m *stubBookingRepo) CancelPending(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *stubBookingRepo) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type stubEventRepo struct {
	mock.Mock
}

func (m *stubEventRepo) CreateEvent(ctx context.Context, event *events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *stubEventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.Event), args.Error(1)
}

func (m *stubEventRepo) GetAllEvents(ctx context.Context, query events.EventListQuery) ([]events.Event, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]events.Event), args.Get(1).(int64), args.Error(2)
}

func (m *stubEventRepo) UpdateEvent(ctx context.Context, event *events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *stubEventRepo) ReserveCapacity(ctx context.Context, eventID uuid.UUID, persons int) error {
	return m.Called(ctx, eventID, persons).Error(0)
}

type stubCouponService struct {
	mock.Mock
}

func (m *stubCouponService) CreateCoupon(ctx context.Context, req coupons.CreateCouponRequest) (*coupons.Coupon, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

func (m *stubCouponService) ListCoupons(ctx context.Context, query coupons.CouponListQuery) (*coupons.PaginatedCoupons, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.PaginatedCoupons), args.Error(1)
}

func (m *stubCouponService) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *stubCouponService) ValidateForOrder(ctx context.Context, code string, subtotal float64) (*coupons.Coupon, error) {
	args := m.Called(ctx, code, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupons.Coupon), args.Error(1)
}

type bookingFixture struct {
	repo      *stubBookingRepo
	eventRepo *stubEventRepo
	couponSvc *stubCouponService
	service   bookings.Service
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		repo:      &stubBookingRepo{},
		eventRepo: &stubEventRepo{},
		couponSvc: &stubCouponService{},
	}
	f.service = bookings.NewService(f.repo, f.eventRepo, f.couponSvc, logger.New())
	return f
}

func publishedEvent(id uuid.UUID) *events.Event {
	return &events.Event{
		ID:          id,
		Name:        "Indie Music Night",
		Status:      events.StatusPublished,
		MaxCapacity: 500,
		Passes: events.PassList{
			{Type: "Stag", Price: 500, Quantity: 300},
			{Type: "Couple", Price: 800, Quantity: 100},
		},
	}
}

func createRequest(eventID uuid.UUID) bookings.CreateBookingRequest {
	return bookings.CreateBookingRequest{
		EventID: eventID,
		Items: []bookings.OrderItemRequest{
			{PassType: "Couple", Quantity: 1},
			{PassType: "Stag", Quantity: 1},
		},
		Attendees: []bookings.AttendeeRequest{
			{FullName: "Asha Patel", Email: "asha@example.com", Phone: "9000000001", PassType: "Couple"},
			{FullName: "Rahul Verma", Email: "rahul@example.com", Phone: "9000000002", PassType: "Couple"},
			{FullName: "Neha Singh", Email: "neha@example.com", Phone: "9000000003", PassType: "Stag"},
		},
		RedirectURL: "https://shop.example.com/return",
	}
}

func TestCreateBooking_SnapshotsPricesAndTotals(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	eventID := uuid.New()

	f.eventRepo.On("GetEventByID", ctx, eventID).Return(publishedEvent(eventID), nil)
	f.repo.On("CreateBooking", ctx, mock.AnythingOfType("*bookings.Booking")).Return(nil)

	resp, err := f.service.CreateBooking(ctx, nil, createRequest(eventID))
	require.NoError(t, err)

	assert.Equal(t, bookings.StatusPending, resp.Status)
	assert.Equal(t, 1300.0, resp.Subtotal)
	assert.Equal(t, 0.0, resp.DiscountAmount)
	assert.Equal(t, 130.0, resp.TaxAmount)
	assert.Equal(t, 1430.0, resp.TotalAmount)
	assert.Regexp(t, `^ORD-`, resp.OrderID)
	assert.Len(t, resp.Attendees, 3)
}

func TestCreateBooking_WithCoupon(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	eventID := uuid.New()

	coupon := &coupons.Coupon{
		Code:  "SAVE20",
		Type:  coupons.DiscountTypePercentage,
		Value: 20,
	}

	f.eventRepo.On("GetEventByID", ctx, eventID).Return(publishedEvent(eventID), nil)
	f.couponSvc.On("ValidateForOrder", ctx, "save20", 1300.0).Return(coupon, nil)
	f.repo.On("CreateBooking", ctx, mock.AnythingOfType("*bookings.Booking")).Return(nil)

	req := createRequest(eventID)
	req.CouponCode = "save20"

	resp, err := f.service.CreateBooking(ctx, nil, req)
	require.NoError(t, err)

	// 1300 - 260 = 1040 taxable, tax 104
	assert.Equal(t, 260.0, resp.DiscountAmount)
	assert.Equal(t, 104.0, resp.TaxAmount)
	assert.Equal(t, 1144.0, resp.TotalAmount)
	require.NotNil(t, resp.AppliedCouponCode)
	assert.Equal(t, "SAVE20", *resp.AppliedCouponCode)
}

func TestCreateBooking_RejectsUnbookableEvent(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	eventID := uuid.New()

	draft := publishedEvent(eventID)
	draft.Status = events.StatusDraft
	f.eventRepo.On("GetEventByID", ctx, eventID).Return(draft, nil)

	_, err := f.service.CreateBooking(ctx, nil, createRequest(eventID))
	assert.ErrorIs(t, err, bookings.ErrEventNotBookable)

	f.repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBooking_RejectsUnknownPassType(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	eventID := uuid.New()

	f.eventRepo.On("GetEventByID", ctx, eventID).Return(publishedEvent(eventID), nil)

	req := createRequest(eventID)
	req.Items = []bookings.OrderItemRequest{{PassType: "Backstage", Quantity: 1}}

	_, err := f.service.CreateBooking(ctx, nil, req)
	assert.ErrorIs(t, err, bookings.ErrUnknownPassType)
}

func TestCreateBooking_AttendeeCountMustMatchPasses(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()
	eventID := uuid.New()

	f.eventRepo.On("GetEventByID", ctx, eventID).Return(publishedEvent(eventID), nil)

	// One Couple pass implies two attendees, only one given
	req := createRequest(eventID)
	req.Items = []bookings.OrderItemRequest{{PassType: "Couple", Quantity: 1}}
	req.Attendees = req.Attendees[:1]

	_, err := f.service.CreateBooking(ctx, nil, req)
	assert.ErrorIs(t, err, bookings.ErrAttendeeCountInvalid)
}

func TestApplyCoupon_EmptyCodeRestoresBaseTotals(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	code := "SAVE20"
	booking := &bookings.Booking{
		OrderID:           "ORD-1",
		Status:            bookings.StatusPending,
		Items:             bookings.OrderItemList{{PassType: "Stag", Quantity: 2, Price: 500}},
		Subtotal:          1000,
		DiscountAmount:    200,
		TaxAmount:         80,
		TotalAmount:       880,
		AppliedCouponCode: &code,
	}

	f.repo.On("GetByOrderID", ctx, "ORD-1").Return(booking, nil)
	f.repo.On("UpdatePricing", ctx, "ORD-1", bookings.OrderTotals{
		Subtotal:       1000,
		DiscountAmount: 0,
		TaxAmount:      100,
		TotalAmount:    1100,
	}, (*string)(nil)).Return(nil)

	resp, err := f.service.ApplyCoupon(ctx, "ORD-1", "")
	require.NoError(t, err)
	assert.Equal(t, 1100.0, resp.TotalAmount)
	assert.Nil(t, resp.AppliedCouponCode)

	f.couponSvc.AssertNotCalled(t, "ValidateForOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCoupon_RejectsResolvedBooking(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	booking := &bookings.Booking{
		OrderID: "ORD-1",
		Status:  bookings.StatusConfirmed,
	}
	f.repo.On("GetByOrderID", ctx, "ORD-1").Return(booking, nil)

	_, err := f.service.ApplyCoupon(ctx, "ORD-1", "SAVE20")
	assert.ErrorIs(t, err, bookings.ErrBookingNotPending)

	f.repo.AssertNotCalled(t, "UpdatePricing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
