package tickets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	StatusActive    TicketStatus = "ACTIVE"
	StatusUsed      TicketStatus = "USED"
	StatusCancelled TicketStatus = "CANCELLED"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusCancelled:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}

// Ticket is minted once per attendee when a booking confirms. The ticket
// number and QR payload are both globally unique; the schema enforces it.
type Ticket struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TicketNumber string     `json:"ticket_number" gorm:"uniqueIndex;not null;size:64"`
	QRCode       string     `json:"qr_code" gorm:"uniqueIndex;not null"`
	BookingID    uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;index"`
	EventID      uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID       *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`

	// Attendee snapshot
	AttendeeName  string `json:"attendee_name" gorm:"not null;size:100"`
	AttendeeEmail string `json:"attendee_email" gorm:"size:255"`
	AttendeePhone string `json:"attendee_phone" gorm:"size:20"`

	PassType string  `json:"pass_type" gorm:"not null;size:50"`
	Price    float64 `json:"price" gorm:"not null"`

	Status      TicketStatus `json:"status" gorm:"not null;default:'ACTIVE'"`
	CheckedInAt *time.Time   `json:"checked_in_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// QRPayload is the structure serialized into the QR code. It carries
// enough to locate and validate the ticket without a lookup table.
type QRPayload struct {
	TicketNumber string    `json:"ticket_number"`
	BookingID    uuid.UUID `json:"booking_id"`
	EventID      uuid.UUID `json:"event_id"`
	AttendeeName string    `json:"attendee_name"`
	PassType     string    `json:"pass_type"`
}

type CheckInRequest struct {
	QRCode string `json:"qr_code" binding:"required"`
}

type CheckInResponse struct {
	TicketNumber string     `json:"ticket_number"`
	AttendeeName string     `json:"attendee_name"`
	PassType     string     `json:"pass_type"`
	EventID      uuid.UUID  `json:"event_id"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
}
