package bookings_test

import (
	"context"
	"testing"
	"time"

	"gatherly/internal/bookings"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestGetByOrderID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := bookings.NewRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WithArgs("ORD-MISSING", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByOrderID(context.Background(), "ORD-MISSING")
	assert.ErrorIs(t, err, bookings.ErrBookingNotFound)
}

func TestUpdatePricing_OnlyWhilePending(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := bookings.NewRepository(gdb)

	totals := bookings.OrderTotals{
		Subtotal:       1000,
		DiscountAmount: 200,
		TaxAmount:      80,
		TotalAmount:    880,
	}
	code := "SAVE20"

	mock.ExpectExec(`UPDATE "bookings" SET`).
		WithArgs(code, 200.0, 80.0, 880.0, sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePricing(context.Background(), "ORD-1", totals, &code)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePricing_ResolvedBookingIsFrozen(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := bookings.NewRepository(gdb)

	mock.ExpectExec(`UPDATE "bookings" SET`).
		WithArgs(nil, 0.0, 100.0, 1100.0, sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	totals := bookings.OrderTotals{Subtotal: 1000, TaxAmount: 100, TotalAmount: 1100}
	err := repo.UpdatePricing(context.Background(), "ORD-1", totals, nil)
	assert.ErrorIs(t, err, bookings.ErrBookingNotPending)
}

func TestCancelPending_AlreadyResolved(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := bookings.NewRepository(gdb)

	mock.ExpectExec(`UPDATE "bookings" SET "status"=`).
		WithArgs("CANCELLED", sqlmock.AnyArg(), "ORD-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelPending(context.Background(), "ORD-1")
	assert.ErrorIs(t, err, bookings.ErrBookingNotPending)
}

func TestFailStalePending_ReturnsSweptCount(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := bookings.NewRepository(gdb)

	cutoff := time.Now().Add(-30 * time.Minute)

	mock.ExpectExec(`UPDATE "bookings" SET "status"=`).
		WithArgs("FAILED", sqlmock.AnyArg(), "PENDING", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	swept, err := repo.FailStalePending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), swept)
}
