package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gatherly/internal/bookings"
	"gatherly/internal/events"
	"gatherly/pkg/logger"
)

// Notifier is the fire-and-forget notification sink. Failures are logged
// by the implementation and never surface here.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, booking *bookings.Booking, ticketCount int)
}

// Service is the booking reconciler: one Confirm state machine fed by
// three transports (explicit verify, webhook callback, browser redirect).
type Service interface {
	InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, orderID string) (*VerifyPaymentResponse, error)
	HandleCallback(ctx context.Context, base64Response, xVerify string) error
	HandleRedirect(ctx context.Context, orderID string) (string, error)
	Confirm(ctx context.Context, signal ConfirmationSignal) (*Outcome, error)
}

type service struct {
	store       Store
	gateway     Gateway
	bookingRepo bookings.Repository
	bookingSvc  bookings.Service
	notifier    Notifier
	log         *logger.Logger
}

// NewService wires the reconciler. notifier may be nil when the
// notification pipeline is disabled.
func NewService(store Store, gateway Gateway, bookingRepo bookings.Repository, bookingSvc bookings.Service, notifier Notifier, log *logger.Logger) Service {
	return &service{
		store:       store,
		gateway:     gateway,
		bookingRepo: bookingRepo,
		bookingSvc:  bookingSvc,
		notifier:    notifier,
		log:         log,
	}
}

func (s *service) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	booking, err := s.bookingRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookings.StatusPending {
		return nil, bookings.ErrBookingNotPending
	}

	// Coupon changes are allowed right up until the payment is initiated;
	// after that the financials ride through confirmation untouched.
	totalAmount := booking.TotalAmount
	if req.CouponCode != nil {
		updated, err := s.bookingSvc.ApplyCoupon(ctx, req.OrderID, *req.CouponCode)
		if err != nil {
			return nil, err
		}
		totalAmount = updated.TotalAmount
	}

	amountMinor := int64(math.Round(totalAmount * MinorUnitsPerMajor))

	paymentURL, err := s.gateway.Initiate(ctx, booking.OrderID, amountMinor)
	if err != nil {
		s.log.LogGatewayError(ctx, booking.OrderID, err)
		return nil, err
	}

	return &InitiatePaymentResponse{
		OrderID:     booking.OrderID,
		TotalAmount: totalAmount,
		AmountMinor: amountMinor,
		PaymentURL:  paymentURL,
	}, nil
}

// Confirm drives one confirmation signal through the state machine. It is
// safe to call concurrently from any transport for the same order: exactly
// one caller confirms, the rest get an already-resolved outcome.
func (s *service) Confirm(ctx context.Context, signal ConfirmationSignal) (*Outcome, error) {
	booking, issued, err := s.store.ConfirmBooking(ctx, signal)
	if err == nil {
		s.log.LogBookingConfirmed(ctx, booking.OrderID, signal.ProviderTxnID, signal.Source)
		if s.notifier != nil {
			s.notifier.NotifyBookingConfirmed(ctx, booking, len(issued))
		}
		return &Outcome{Booking: booking, Tickets: issued}, nil
	}

	var resolved *AlreadyResolvedError
	if errors.As(err, &resolved) {
		return &Outcome{Booking: resolved.Booking, AlreadyResolved: true}, nil
	}
	if errors.Is(err, bookings.ErrBookingNotFound) {
		// Unknown order ids are no-op successes: the gateway may retry a
		// webhook for a booking we never created or already swept away.
		return &Outcome{AlreadyResolved: true}, nil
	}

	if isBusinessFailure(err) {
		if failErr := s.store.MarkFailed(ctx, signal.OrderID); failErr != nil {
			s.log.ErrorWithContext(ctx, "Failed to mark booking failed", failErr,
				map[string]interface{}{"order_id": signal.OrderID})
		}
		s.logBusinessFailure(ctx, signal, err)
		return nil, err
	}

	// Unexpected storage errors leave the booking PENDING so a later
	// trigger can still resolve it.
	return nil, err
}

// isBusinessFailure reports whether an error is a definitive rejection
// that must drive the booking to FAILED, as opposed to a transient fault.
func isBusinessFailure(err error) bool {
	return errors.Is(err, ErrAmountMismatch) ||
		errors.Is(err, ErrIssuanceFailed) ||
		errors.Is(err, events.ErrCapacityExceeded) ||
		errors.Is(err, events.ErrEventNotFound)
}

func (s *service) logBusinessFailure(ctx context.Context, signal ConfirmationSignal, err error) {
	if errors.Is(err, ErrAmountMismatch) {
		expected := 0.0
		if booking, lookupErr := s.bookingRepo.GetByOrderID(ctx, signal.OrderID); lookupErr == nil {
			expected = booking.TotalAmount
		}
		s.log.LogAmountMismatch(ctx, signal.OrderID, expected,
			float64(signal.AmountMinor)/MinorUnitsPerMajor)
		return
	}
	s.log.LogBookingFailed(ctx, signal.OrderID, err.Error())
}

func (s *service) VerifyPayment(ctx context.Context, orderID string) (*VerifyPaymentResponse, error) {
	status, err := s.gateway.QueryStatus(ctx, orderID)
	if err != nil {
		s.log.LogGatewayError(ctx, orderID, err)
		return nil, err
	}

	if !status.Success {
		if isGatewayPending(status.Code) {
			return s.respondWithCurrent(ctx, orderID)
		}
		if err := s.store.MarkFailed(ctx, orderID); err != nil {
			return nil, err
		}
		s.log.LogBookingFailed(ctx, orderID, "gateway reported "+status.Code)
		return s.respondWithCurrent(ctx, orderID)
	}

	outcome, err := s.Confirm(ctx, ConfirmationSignal{
		OrderID:       orderID,
		ProviderTxnID: status.ProviderTxnID,
		AmountMinor:   status.AmountMinor,
		Source:        SourceVerify,
	})
	if err != nil {
		if isBusinessFailure(err) {
			// Definitive rejection; the booking is FAILED now
			return s.respondWithCurrent(ctx, orderID)
		}
		return nil, err
	}

	resp := outcomeResponse(orderID, outcome)
	if outcome.AlreadyResolved && resp.Status == bookings.StatusConfirmed {
		// A duplicate trigger gets no ticket set back; the audit transaction
		// is the caller's evidence of the original confirmation.
		if txn, txnErr := s.store.GetTransactionByOrderID(ctx, orderID); txnErr == nil {
			resp.Transaction = txn
		}
	}
	return resp, nil
}

func (s *service) HandleCallback(ctx context.Context, base64Response, xVerify string) error {
	result, err := s.gateway.DecodeCallback(base64Response, xVerify)
	if err != nil {
		s.log.LogGatewayError(ctx, "", err)
		return err
	}

	if !result.Success {
		if isGatewayPending(result.Code) {
			return nil
		}
		if err := s.store.MarkFailed(ctx, result.OrderID); err != nil {
			return err
		}
		s.log.LogBookingFailed(ctx, result.OrderID, "gateway reported "+result.Code)
		return nil
	}

	_, err = s.Confirm(ctx, ConfirmationSignal{
		OrderID:       result.OrderID,
		ProviderTxnID: result.ProviderTxnID,
		AmountMinor:   result.AmountMinor,
		Source:        SourceWebhook,
	})
	if err != nil && !isBusinessFailure(err) {
		return err
	}
	return nil
}

// HandleRedirect resolves the browser-return leg. Redirect parameters are
// untrusted: the order id only locates the booking, the outcome comes from
// an authoritative status query.
func (s *service) HandleRedirect(ctx context.Context, orderID string) (string, error) {
	booking, err := s.bookingRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}

	dest := func(state string) string {
		return fmt.Sprintf("%s?order_id=%s&status=%s", booking.RedirectURL, orderID, state)
	}

	if booking.Status != bookings.StatusPending {
		return dest(coarseStatus(booking.Status)), nil
	}

	status, err := s.gateway.QueryStatus(ctx, orderID)
	if err != nil {
		// Leave the booking PENDING; webhook or verify can still resolve it
		s.log.LogGatewayError(ctx, orderID, err)
		return dest("pending"), nil
	}

	if !status.Success {
		if isGatewayPending(status.Code) {
			return dest("pending"), nil
		}
		if err := s.store.MarkFailed(ctx, orderID); err != nil {
			return dest("pending"), nil
		}
		s.log.LogBookingFailed(ctx, orderID, "gateway reported "+status.Code)
		return dest("failed"), nil
	}

	outcome, err := s.Confirm(ctx, ConfirmationSignal{
		OrderID:       orderID,
		ProviderTxnID: status.ProviderTxnID,
		AmountMinor:   status.AmountMinor,
		Source:        SourceRedirect,
	})
	if err != nil {
		if isBusinessFailure(err) {
			return dest("failed"), nil
		}
		return dest("pending"), nil
	}
	if outcome.Booking == nil {
		return dest("pending"), nil
	}

	return dest(coarseStatus(outcome.Booking.Status)), nil
}

func (s *service) respondWithCurrent(ctx context.Context, orderID string) (*VerifyPaymentResponse, error) {
	booking, err := s.bookingRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &VerifyPaymentResponse{
		OrderID:   orderID,
		Status:    booking.Status,
		PaymentID: booking.PaymentID,
		Booking:   &resp,
	}, nil
}

func outcomeResponse(orderID string, outcome *Outcome) *VerifyPaymentResponse {
	resp := &VerifyPaymentResponse{OrderID: orderID}
	if outcome.Booking != nil {
		bookingResp := outcome.Booking.ToResponse()
		resp.Status = outcome.Booking.Status
		resp.PaymentID = outcome.Booking.PaymentID
		resp.Booking = &bookingResp
		resp.Tickets = outcome.Tickets
	}
	return resp
}

func isGatewayPending(code string) bool {
	return code == "PAYMENT_PENDING"
}

func coarseStatus(status bookings.BookingStatus) string {
	return strings.ToLower(status.String())
}
