package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gatherly/internal/bookings"
	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/internal/tickets"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAmountMismatch means the paid amount differs from the booking
	// total by more than the epsilon. Treated as a potential tampering
	// attempt: the booking fails, it never confirms.
	ErrAmountMismatch = errors.New("paid amount does not match booking total")

	// ErrIssuanceFailed wraps a ticket-minting failure. Confirmation and
	// issuance are all-or-nothing, so this rolls the confirmation back.
	ErrIssuanceFailed = errors.New("ticket issuance failed")
)

// AlreadyResolvedError reports that the booking had already reached a
// terminal state when a confirmation trigger arrived. It is not a failure:
// racing triggers are expected, and the embedded booking carries the
// outcome the winner produced.
type AlreadyResolvedError struct {
	Booking *bookings.Booking
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("booking %s already %s", e.Booking.OrderID, e.Booking.Status)
}

// Store persists the confirmation state machine's effects
type Store interface {
	// ConfirmBooking runs the whole pending -> confirmed transition in
	// one database transaction: claim the pending booking, check the paid
	// amount, reserve event capacity, flip the status, bump coupon usage,
	// append the audit transaction and insert the ticket set. Any business
	// failure aborts the transaction with no partial side effects.
	ConfirmBooking(ctx context.Context, signal ConfirmationSignal) (*bookings.Booking, []tickets.Ticket, error)

	// MarkFailed flips PENDING -> FAILED. A no-op when the booking has
	// already resolved, so racing triggers cannot clobber a confirmation.
	MarkFailed(ctx context.Context, orderID string) error

	GetTransactionByOrderID(ctx context.Context, orderID string) (*Transaction, error)
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) ConfirmBooking(ctx context.Context, signal ConfirmationSignal) (*bookings.Booking, []tickets.Ticket, error) {
	var confirmed *bookings.Booking
	var issued []tickets.Ticket

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim: lock the booking row so only one of the racing triggers
		// proceeds; the others block here and then see a terminal status.
		var booking bookings.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", signal.OrderID).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bookings.ErrBookingNotFound
			}
			return err
		}

		if booking.Status != bookings.StatusPending {
			return &AlreadyResolvedError{Booking: &booking}
		}

		paid := float64(signal.AmountMinor) / MinorUnitsPerMajor
		if math.Abs(paid-booking.TotalAmount) > AmountEpsilon {
			return ErrAmountMismatch
		}

		if err := events.ReserveCapacityTx(tx, booking.EventID, booking.TicketCount()); err != nil {
			return err
		}

		result := tx.Model(&bookings.Booking{}).
			Where("order_id = ? AND status = ?", signal.OrderID, bookings.StatusPending).
			Updates(map[string]interface{}{
				"status":     bookings.StatusConfirmed,
				"payment_id": signal.ProviderTxnID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Cannot happen while we hold the row lock, but a zero here
			// must never silently confirm.
			return bookings.ErrBookingNotPending
		}

		if booking.AppliedCouponCode != nil {
			err := coupons.IncrementUsageTx(tx, *booking.AppliedCouponCode)
			if err != nil && !errors.Is(err, coupons.ErrCouponNotFound) {
				return err
			}
			// A coupon whose limit filled up between application and
			// confirmation keeps its discount; the counter just stays put.
		}

		txn := Transaction{
			BookingID:     booking.ID,
			OrderID:       booking.OrderID,
			Amount:        booking.TotalAmount,
			ProviderTxnID: signal.ProviderTxnID,
			Status:        "SUCCESS",
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		booking.Status = bookings.StatusConfirmed
		booking.PaymentID = &signal.ProviderTxnID

		ticketSet, err := tickets.BuildTickets(&booking)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
		}
		if err := tickets.InsertTicketsTx(tx, ticketSet); err != nil {
			return fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
		}

		confirmed = &booking
		issued = ticketSet
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return confirmed, issued, nil
}

func (s *store) MarkFailed(ctx context.Context, orderID string) error {
	result := s.db.WithContext(ctx).Model(&bookings.Booking{}).
		Where("order_id = ? AND status = ?", orderID, bookings.StatusPending).
		Update("status", bookings.StatusFailed)
	if result.Error != nil {
		return result.Error
	}
	// Zero rows means the booking already resolved; nothing to do.
	return nil
}

func (s *store) GetTransactionByOrderID(ctx context.Context, orderID string) (*Transaction, error) {
	var txn Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &txn, nil
}
