package tickets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	GetTicketsForBooking(ctx context.Context, bookingID uuid.UUID) ([]Ticket, error)

	// VerifyAndCheckIn consumes a scanned QR payload, validates it against
	// the stored ticket and marks the ticket used.
	VerifyAndCheckIn(ctx context.Context, qrCode string) (*CheckInResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetTicketsForBooking(ctx context.Context, bookingID uuid.UUID) ([]Ticket, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

func (s *service) VerifyAndCheckIn(ctx context.Context, qrCode string) (*CheckInResponse, error) {
	payload, err := DecodeQRPayload(qrCode)
	if err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetByTicketNumber(ctx, payload.TicketNumber)
	if err != nil {
		return nil, err
	}

	// The scanned payload must match the stored record; a mismatch means
	// a forged or corrupted code.
	if ticket.QRCode != qrCode {
		return nil, fmt.Errorf("qr code does not match ticket %s", payload.TicketNumber)
	}
	if ticket.EventID != payload.EventID || ticket.BookingID != payload.BookingID {
		return nil, fmt.Errorf("qr code references do not match ticket %s", payload.TicketNumber)
	}

	checkedIn, err := s.repo.CheckIn(ctx, ticket.TicketNumber)
	if err != nil {
		return nil, err
	}

	return &CheckInResponse{
		TicketNumber: checkedIn.TicketNumber,
		AttendeeName: checkedIn.AttendeeName,
		PassType:     checkedIn.PassType,
		EventID:      checkedIn.EventID,
		CheckedInAt:  checkedIn.CheckedInAt,
	}, nil
}
