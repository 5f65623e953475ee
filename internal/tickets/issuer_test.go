package tickets_test

import (
	"testing"

	"gatherly/internal/bookings"
	"gatherly/internal/tickets"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking() *bookings.Booking {
	return &bookings.Booking{
		ID:      uuid.New(),
		OrderID: "ORD-1700000000-ABCD1234",
		EventID: uuid.New(),
		Attendees: bookings.AttendeeList{
			{FullName: "Asha Patel", Email: "asha@example.com", PassType: "Couple"},
			{FullName: "Rahul Verma", Email: "rahul@example.com", PassType: "Couple"},
			{FullName: "Neha Singh", Email: "neha@example.com", PassType: "Stag"},
		},
		Items: bookings.OrderItemList{
			{PassType: "Couple", Quantity: 1, Price: 800},
			{PassType: "Stag", Quantity: 1, Price: 500},
		},
	}
}

func TestBuildTickets_OnePerAttendee(t *testing.T) {
	booking := testBooking()

	ticketSet, err := tickets.BuildTickets(booking)
	require.NoError(t, err)
	require.Len(t, ticketSet, 3)

	for i, ticket := range ticketSet {
		assert.Equal(t, booking.ID, ticket.BookingID)
		assert.Equal(t, booking.EventID, ticket.EventID)
		assert.Equal(t, booking.Attendees[i].FullName, ticket.AttendeeName)
		assert.Equal(t, tickets.StatusActive, ticket.Status)
		assert.Regexp(t, `^TKT-\d+-[0-9A-F]{8}$`, ticket.TicketNumber)
	}
}

func TestBuildTickets_CouplePriceSplitsAcrossPair(t *testing.T) {
	booking := testBooking()

	ticketSet, err := tickets.BuildTickets(booking)
	require.NoError(t, err)

	// Each half of the couple carries half the pass price
	assert.Equal(t, 400.0, ticketSet[0].Price)
	assert.Equal(t, 400.0, ticketSet[1].Price)
	assert.Equal(t, 500.0, ticketSet[2].Price)

	var sum float64
	for _, ticket := range ticketSet {
		sum += ticket.Price
	}
	assert.Equal(t, 1300.0, sum)
}

func TestBuildTickets_UnknownPassTypeFails(t *testing.T) {
	booking := testBooking()
	booking.Attendees = append(booking.Attendees, bookings.Attendee{
		FullName: "Ghost", PassType: "Backstage",
	})

	_, err := tickets.BuildTickets(booking)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Backstage")
}

func TestQRPayload_RoundTrip(t *testing.T) {
	booking := testBooking()

	ticketSet, err := tickets.BuildTickets(booking)
	require.NoError(t, err)

	payload, err := tickets.DecodeQRPayload(ticketSet[0].QRCode)
	require.NoError(t, err)

	assert.Equal(t, ticketSet[0].TicketNumber, payload.TicketNumber)
	assert.Equal(t, booking.ID, payload.BookingID)
	assert.Equal(t, booking.EventID, payload.EventID)
	assert.Equal(t, "Asha Patel", payload.AttendeeName)
	assert.Equal(t, "Couple", payload.PassType)
}

func TestDecodeQRPayload_RejectsGarbage(t *testing.T) {
	_, err := tickets.DecodeQRPayload("not base64 at all!!!")
	assert.Error(t, err)

	_, err = tickets.DecodeQRPayload("e30=") // {} - missing ticket number
	assert.Error(t, err)
}
