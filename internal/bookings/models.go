package bookings

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendee is the per-person snapshot captured at order creation
type Attendee struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Gender   string `json:"gender"`
	PassType string `json:"pass_type"`
}

type AttendeeList []Attendee

func (a AttendeeList) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AttendeeList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan attendee list: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, a)
}

// OrderItem snapshots a pass selection with its price at order time.
// The price is never re-read from the catalog after creation.
type OrderItem struct {
	PassType string  `json:"pass_type"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderItemList []OrderItem

func (o OrderItemList) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *OrderItemList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan order item list: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, o)
}

// Booking is the order record driven through PENDING -> CONFIRMED | FAILED,
// with CANCELLED reachable only from PENDING.
type Booking struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID string    `json:"order_id" gorm:"uniqueIndex;not null;size:64"`

	EventID uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;index"`
	UserID  *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`

	Attendees AttendeeList  `json:"attendees" gorm:"type:jsonb;not null"`
	Items     OrderItemList `json:"items" gorm:"type:jsonb;not null"`

	Subtotal          float64 `json:"subtotal" gorm:"not null"`
	DiscountAmount    float64 `json:"discount_amount" gorm:"not null;default:0"`
	TaxAmount         float64 `json:"tax_amount" gorm:"not null"`
	TotalAmount       float64 `json:"total_amount" gorm:"not null"`
	AppliedCouponCode *string `json:"applied_coupon_code,omitempty" gorm:"size:50"`

	Status BookingStatus `json:"status" gorm:"not null;default:'PENDING';index"`

	// PaymentID holds the provider's transaction id, set only on confirmation
	PaymentID   *string `json:"payment_id,omitempty" gorm:"size:128"`
	RedirectURL string  `json:"redirect_url" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TicketCount is the number of attendee seats this booking claims against
// event capacity. One ticket is issued per attendee.
func (b *Booking) TicketCount() int {
	return len(b.Attendees)
}

// PersonsPerUnit maps a pass type to the number of attendees one unit
// covers. A Couple pass admits two people.
func PersonsPerUnit(passType string) int {
	if strings.EqualFold(passType, "Couple") {
		return 2
	}
	return 1
}

// PersonsForItems sums the attendee seats implied by an item list
func PersonsForItems(items []OrderItem) int {
	persons := 0
	for _, item := range items {
		persons += item.Quantity * PersonsPerUnit(item.PassType)
	}
	return persons
}

// GenerateOrderID mints the merchant-visible idempotency key for a booking
func GenerateOrderID() string {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to nanoseconds so we still produce a usable id
		return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), strings.ToUpper(hex.EncodeToString(randomBytes)))
}

// Request/response DTOs

type OrderItemRequest struct {
	PassType string `json:"pass_type" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type AttendeeRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	Gender   string `json:"gender" binding:"omitempty,oneof=male female other"`
	PassType string `json:"pass_type" binding:"required"`
}

type CreateBookingRequest struct {
	EventID     uuid.UUID          `json:"event_id" binding:"required"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Attendees   []AttendeeRequest  `json:"attendees" binding:"required,min=1,dive"`
	RedirectURL string             `json:"redirect_url" binding:"required,url"`
	CouponCode  string             `json:"coupon_code,omitempty"`
}

type ApplyCouponRequest struct {
	// Empty code clears the applied coupon and restores undiscounted totals
	CouponCode string `json:"coupon_code"`
}

type BookingResponse struct {
	ID                uuid.UUID     `json:"id"`
	OrderID           string        `json:"order_id"`
	EventID           uuid.UUID     `json:"event_id"`
	UserID            *uuid.UUID    `json:"user_id,omitempty"`
	Attendees         AttendeeList  `json:"attendees"`
	Items             OrderItemList `json:"items"`
	Subtotal          float64       `json:"subtotal"`
	DiscountAmount    float64       `json:"discount_amount"`
	TaxAmount         float64       `json:"tax_amount"`
	TotalAmount       float64       `json:"total_amount"`
	AppliedCouponCode *string       `json:"applied_coupon_code,omitempty"`
	Status            BookingStatus `json:"status"`
	PaymentID         *string       `json:"payment_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		OrderID:           b.OrderID,
		EventID:           b.EventID,
		UserID:            b.UserID,
		Attendees:         b.Attendees,
		Items:             b.Items,
		Subtotal:          b.Subtotal,
		DiscountAmount:    b.DiscountAmount,
		TaxAmount:         b.TaxAmount,
		TotalAmount:       b.TotalAmount,
		AppliedCouponCode: b.AppliedCouponCode,
		Status:            b.Status,
		PaymentID:         b.PaymentID,
		CreatedAt:         b.CreatedAt,
	}
}
