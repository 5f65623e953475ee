package database

import (
	"gatherly/internal/bookings"
	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/internal/payments"
	"gatherly/internal/tickets"
	"gatherly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&coupons.Coupon{},
		&bookings.Booking{},
		&tickets.Ticket{},
		&payments.Transaction{},
	)
}
