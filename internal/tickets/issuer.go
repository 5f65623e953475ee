package tickets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/bookings"
)

// BuildTickets mints one ticket per attendee of a booking. It is a pure
// construction step: nothing is persisted here, so a caller can build the
// full set inside its own transaction and insert atomically.
//
// Per-ticket price comes from the booking's item snapshot: a Couple pass
// covers two attendees, so each of the pair is priced at half the pass
// price and together they sum to it.
func BuildTickets(booking *bookings.Booking) ([]Ticket, error) {
	priceByPass := make(map[string]float64, len(booking.Items))
	for _, item := range booking.Items {
		priceByPass[strings.ToLower(item.PassType)] = item.Price
	}

	result := make([]Ticket, 0, len(booking.Attendees))
	for _, attendee := range booking.Attendees {
		passPrice, ok := priceByPass[strings.ToLower(attendee.PassType)]
		if !ok {
			return nil, fmt.Errorf("no order item for pass type %q", attendee.PassType)
		}

		ticketNumber, err := generateTicketNumber()
		if err != nil {
			return nil, err
		}

		qrCode, err := encodeQRPayload(QRPayload{
			TicketNumber: ticketNumber,
			BookingID:    booking.ID,
			EventID:      booking.EventID,
			AttendeeName: attendee.FullName,
			PassType:     attendee.PassType,
		})
		if err != nil {
			return nil, err
		}

		result = append(result, Ticket{
			TicketNumber:  ticketNumber,
			QRCode:        qrCode,
			BookingID:     booking.ID,
			EventID:       booking.EventID,
			UserID:        booking.UserID,
			AttendeeName:  attendee.FullName,
			AttendeeEmail: attendee.Email,
			AttendeePhone: attendee.Phone,
			PassType:      attendee.PassType,
			Price:         passPrice / float64(bookings.PersonsPerUnit(attendee.PassType)),
			Status:        StatusActive,
		})
	}

	return result, nil
}

// generateTicketNumber combines a timestamp with a random suffix. True
// uniqueness is enforced by the ticket_number unique index; a collision
// surfaces as a constraint violation and fails the whole issuance.
func generateTicketNumber() (string, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate ticket number: %w", err)
	}
	return fmt.Sprintf("TKT-%d-%s", time.Now().UnixNano(),
		strings.ToUpper(hex.EncodeToString(randomBytes))), nil
}

func encodeQRPayload(payload QRPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeQRPayload reverses encodeQRPayload for the check-in path
func DecodeQRPayload(qrCode string) (*QRPayload, error) {
	data, err := base64.StdEncoding.DecodeString(qrCode)
	if err != nil {
		return nil, fmt.Errorf("invalid qr code encoding: %w", err)
	}

	var payload QRPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid qr code payload: %w", err)
	}
	if payload.TicketNumber == "" {
		return nil, fmt.Errorf("qr code payload missing ticket number")
	}
	return &payload, nil
}
