package events

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pass is one entry of an event's pass catalog. Prices are quoted in major
// currency units. Quantity is catalog metadata; seat accounting is done
// exclusively through the aggregate current_bookings counter.
type Pass struct {
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// PassList is stored as a JSONB column on the event row
type PassList []Pass

func (p PassList) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PassList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported type for PassList")
	}
}

type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Venue       string    `json:"venue" gorm:"not null;size:255"`
	DateTime    time.Time `json:"date_time" gorm:"not null"`

	// Capacity ledger: current_bookings counts confirmed attendees and may
	// only grow through the conditional reservation update.
	MaxCapacity     int `json:"max_capacity" gorm:"not null;check:max_capacity > 0"`
	CurrentBookings int `json:"current_bookings" gorm:"default:0;check:current_bookings >= 0"`

	Passes PassList    `json:"passes" gorm:"type:jsonb"`
	Status EventStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`

	CreatedBy uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	UpdatedBy *uuid.UUID `json:"updated_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// PassByType looks up a catalog entry, case-insensitively
func (e *Event) PassByType(passType string) (*Pass, bool) {
	for i := range e.Passes {
		if strings.EqualFold(e.Passes[i].Type, passType) {
			return &e.Passes[i], true
		}
	}
	return nil, false
}

// AvailableSeats returns remaining aggregate capacity, never negative
func (e *Event) AvailableSeats() int {
	available := e.MaxCapacity - e.CurrentBookings
	if available < 0 {
		available = 0
	}
	return available
}

type CreateEventRequest struct {
	Name        string        `json:"name" binding:"required,min=3,max=255"`
	Description string        `json:"description" binding:"max=2000"`
	Venue       string        `json:"venue" binding:"required,min=3,max=255"`
	DateTime    time.Time     `json:"date_time" binding:"required"`
	MaxCapacity int           `json:"max_capacity" binding:"required,min=1,max=100000"`
	Passes      []PassRequest `json:"passes" binding:"required,min=1,dive"`
}

type PassRequest struct {
	Type     string  `json:"type" binding:"required,min=1,max=50"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity" binding:"min=0"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Venue       *string    `json:"venue" binding:"omitempty,min=3,max=255"`
	DateTime    *time.Time `json:"date_time"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type EventResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Venue           string      `json:"venue"`
	DateTime        time.Time   `json:"date_time"`
	MaxCapacity     int         `json:"max_capacity"`
	CurrentBookings int         `json:"current_bookings"`
	AvailableSeats  int         `json:"available_seats"`
	Passes          []Pass      `json:"passes"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}

// Helper method to convert Event to EventResponse
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:              e.ID.String(),
		Name:            e.Name,
		Description:     e.Description,
		Venue:           e.Venue,
		DateTime:        e.DateTime,
		MaxCapacity:     e.MaxCapacity,
		CurrentBookings: e.CurrentBookings,
		AvailableSeats:  e.AvailableSeats(),
		Passes:          e.Passes,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
