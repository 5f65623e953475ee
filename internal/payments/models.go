package payments

import (
	"time"

	"gatherly/internal/bookings"
	"gatherly/internal/tickets"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is the append-only financial log: exactly one row per
// successful confirmation, never updated afterwards.
type Transaction struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	BookingID     uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	OrderID       string    `json:"order_id" gorm:"not null;index;size:64"`
	Amount        float64   `json:"amount" gorm:"not null"`
	ProviderTxnID string    `json:"provider_txn_id" gorm:"uniqueIndex;not null;size:128"`
	Status        string    `json:"status" gorm:"not null;size:20"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Confirmation trigger sources. All three feed the same Confirm path.
const (
	SourceVerify   = "verify"
	SourceWebhook  = "webhook"
	SourceRedirect = "redirect"
)

// MinorUnitsPerMajor converts between the gateway's minor currency unit
// and the application's major unit.
const MinorUnitsPerMajor = 100

// AmountEpsilon is the tolerance when comparing paid vs expected amounts
const AmountEpsilon = 0.01

// ConfirmationSignal is a provider confirmation normalized from any of
// the three transports.
type ConfirmationSignal struct {
	OrderID       string
	ProviderTxnID string
	AmountMinor   int64
	Source        string
}

// Outcome is the result of driving a confirmation signal through the
// reconciler. AlreadyResolved means another trigger won the race; the
// embedded booking carries the existing terminal state.
type Outcome struct {
	Booking         *bookings.Booking
	Tickets         []tickets.Ticket
	AlreadyResolved bool
}

// Request/response DTOs

type InitiatePaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`

	// CouponCode semantics: absent leaves the current coupon untouched,
	// empty string clears it, anything else replaces it.
	CouponCode *string `json:"coupon_code,omitempty"`
}

type InitiatePaymentResponse struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	AmountMinor int64   `json:"amount_minor"`
	PaymentURL  string  `json:"payment_url"`
}

type VerifyPaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type VerifyPaymentResponse struct {
	OrderID   string                    `json:"order_id"`
	Status    bookings.BookingStatus    `json:"status"`
	PaymentID *string                   `json:"payment_id,omitempty"`
	Booking   *bookings.BookingResponse `json:"booking,omitempty"`
	Tickets   []tickets.Ticket          `json:"tickets,omitempty"`

	// Transaction is the audit row of the original confirmation, attached
	// when a verify arrives after the booking already resolved.
	Transaction *Transaction `json:"transaction,omitempty"`
}

// CallbackRequest is the webhook body: a base64-encoded JSON payload
type CallbackRequest struct {
	Response string `json:"response" binding:"required"`
}
