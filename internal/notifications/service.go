package notifications

import (
	"context"
	"fmt"
	"log"

	"gatherly/internal/bookings"
)

// BookingNotifier adapts the producer to the reconciler's fire-and-forget
// notification sink. Publishing happens on a detached goroutine and a
// failure is logged, never propagated: notification problems must not
// roll back a confirmation.
type BookingNotifier struct {
	producer Producer
}

func NewBookingNotifier(producer Producer) *BookingNotifier {
	return &BookingNotifier{producer: producer}
}

func (n *BookingNotifier) NotifyBookingConfirmed(ctx context.Context, booking *bookings.Booking, ticketCount int) {
	if n == nil || n.producer == nil {
		return
	}

	recipientEmail, recipientName := recipientFor(booking)
	if recipientEmail == "" {
		return
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient(recipientEmail, recipientName).
		WithSubject(fmt.Sprintf("Booking %s confirmed", booking.OrderID)).
		WithTemplateData(map[string]interface{}{
			"order_id":     booking.OrderID,
			"total_amount": booking.TotalAmount,
			"ticket_count": ticketCount,
		}).
		WithEventContext(booking.EventID).
		WithBookingContext(booking.ID).
		Build()

	go func() {
		if err := n.producer.Publish(context.Background(), notification); err != nil {
			log.Printf("Failed to publish booking confirmation notification for %s: %v",
				booking.OrderID, err)
		}
	}()
}

// recipientFor picks the contact for a booking: the first attendee's
// details, since guest bookings carry no user record.
func recipientFor(booking *bookings.Booking) (string, string) {
	if len(booking.Attendees) == 0 {
		return "", ""
	}
	return booking.Attendees[0].Email, booking.Attendees[0].FullName
}
