package payments_test

import (
	"context"
	"testing"

	"gatherly/internal/bookings"
	"gatherly/internal/payments"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gdb, mock
}

// bookingRow builds the row the FOR UPDATE claim reads: two Stag
// attendees, subtotal 1000, total 1100.
func bookingRow(bookingID, eventID uuid.UUID, orderID, status string, couponCode interface{}) *sqlmock.Rows {
	attendees := []byte(`[` +
		`{"full_name":"Asha Patel","email":"asha@example.com","phone":"9000000001","pass_type":"Stag"},` +
		`{"full_name":"Rahul Verma","email":"rahul@example.com","phone":"9000000002","pass_type":"Stag"}]`)
	items := []byte(`[{"pass_type":"Stag","quantity":2,"price":500}]`)

	return sqlmock.NewRows([]string{
		"id", "order_id", "event_id", "attendees", "items",
		"subtotal", "discount_amount", "tax_amount", "total_amount",
		"applied_coupon_code", "status", "redirect_url",
	}).AddRow(
		bookingID.String(), orderID, eventID.String(), attendees, items,
		1000.0, 0.0, 100.0, 1100.0,
		couponCode, status, "https://shop.example.com/return",
	)
}

func TestConfirmBooking_ConfirmsWithinEpsilon(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)
	bookingID, eventID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(bookingRow(bookingID, eventID, "ORD-1", "PENDING", nil))
	mock.ExpectExec(`UPDATE "events" SET "current_bookings"=`).
		WithArgs(2, eventID.String(), "published", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WithArgs("T123456", "CONFIRMED", sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New().String()).
			AddRow(uuid.New().String()))
	mock.ExpectCommit()

	// 110001 minor units is 1100.01: one cent over the total, inside the
	// tolerance, so the booking confirms.
	booking, issued, err := store.ConfirmBooking(context.Background(), payments.ConfirmationSignal{
		OrderID:       "ORD-1",
		ProviderTxnID: "T123456",
		AmountMinor:   110001,
		Source:        payments.SourceWebhook,
	})
	require.NoError(t, err)

	assert.Equal(t, bookings.StatusConfirmed, booking.Status)
	require.NotNil(t, booking.PaymentID)
	assert.Equal(t, "T123456", *booking.PaymentID)
	require.Len(t, issued, 2)
	assert.Equal(t, 500.0, issued[0].Price)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBooking_AmountMismatchRollsBack(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(bookingRow(uuid.New(), uuid.New(), "ORD-1", "PENDING", nil))
	mock.ExpectRollback()

	// 999.00 paid against a 1100.00 total
	_, _, err := store.ConfirmBooking(context.Background(), payments.ConfirmationSignal{
		OrderID:       "ORD-1",
		ProviderTxnID: "T123456",
		AmountMinor:   99900,
	})
	assert.ErrorIs(t, err, payments.ErrAmountMismatch)

	// No capacity increment, no status flip, no transaction row, no tickets
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBooking_AlreadyConfirmedWritesNothing(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(bookingRow(uuid.New(), uuid.New(), "ORD-1", "CONFIRMED", nil))
	mock.ExpectRollback()

	_, _, err := store.ConfirmBooking(context.Background(), payments.ConfirmationSignal{
		OrderID:       "ORD-1",
		ProviderTxnID: "T-LATE",
		AmountMinor:   110000,
	})

	var resolved *payments.AlreadyResolvedError
	require.ErrorAs(t, err, &resolved)
	assert.Equal(t, bookings.StatusConfirmed, resolved.Booking.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBooking_TicketInsertFailureRollsBackEverything(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)
	bookingID, eventID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(bookingRow(bookingID, eventID, "ORD-1", "PENDING", nil))
	mock.ExpectExec(`UPDATE "events" SET "current_bookings"=`).
		WithArgs(2, eventID.String(), "published", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WithArgs("T123456", "CONFIRMED", sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, _, err := store.ConfirmBooking(context.Background(), payments.ConfirmationSignal{
		OrderID:       "ORD-1",
		ProviderTxnID: "T123456",
		AmountMinor:   110000,
	})
	assert.ErrorIs(t, err, payments.ErrIssuanceFailed)

	// The rollback takes the capacity increment and status flip with it
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmBooking_ExhaustedCouponKeepsDiscount(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)
	bookingID, eventID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(bookingRow(bookingID, eventID, "ORD-1", "PENDING", "SAVE20"))
	mock.ExpectExec(`UPDATE "events" SET "current_bookings"=`).
		WithArgs(2, eventID.String(), "published", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WithArgs("T123456", "CONFIRMED", sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Usage limit filled up between application and confirmation: zero rows
	mock.ExpectExec(`UPDATE "coupons" SET "usage_count"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New().String()).
			AddRow(uuid.New().String()))
	mock.ExpectCommit()

	booking, _, err := store.ConfirmBooking(context.Background(), payments.ConfirmationSignal{
		OrderID:       "ORD-1",
		ProviderTxnID: "T123456",
		AmountMinor:   110000,
	})
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusConfirmed, booking.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed_NoOpWhenAlreadyResolved(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)

	mock.ExpectExec(`UPDATE "bookings" SET "status"=`).
		WithArgs("FAILED", sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.MarkFailed(context.Background(), "ORD-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionByOrderID_ReturnsAuditRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := payments.NewStore(gdb)
	txnID, bookingID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WithArgs("ORD-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "order_id", "amount", "provider_txn_id", "status",
		}).AddRow(txnID.String(), bookingID.String(), "ORD-1", 1100.0, "T123456", "SUCCESS"))

	txn, err := store.GetTransactionByOrderID(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "T123456", txn.ProviderTxnID)
	assert.Equal(t, 1100.0, txn.Amount)
}
