package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotActive means the conditional ACTIVE -> USED update
	// matched no row: the ticket was already used or cancelled.
	ErrTicketNotActive = errors.New("ticket is not active")
)

type Repository interface {
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*Ticket, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Ticket, error)

	// CheckIn flips ACTIVE -> USED exactly once. The status guard in the
	// WHERE clause makes a second scan of the same QR code fail instead
	// of double-admitting.
	CheckIn(ctx context.Context, ticketNumber string) (*Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("ticket_number = ?", ticketNumber).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]Ticket, error) {
	var ticketList []Ticket
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&ticketList).Error
	return ticketList, err
}

func (r *repository) CheckIn(ctx context.Context, ticketNumber string) (*Ticket, error) {
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&Ticket{}).
		Where("ticket_number = ? AND status = ?", ticketNumber, StatusActive).
		Updates(map[string]interface{}{
			"status":        StatusUsed,
			"checked_in_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish unknown tickets from already-used ones
		var existing Ticket
		err := r.db.WithContext(ctx).Where("ticket_number = ?", ticketNumber).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTicketNotFound
			}
			return nil, err
		}
		return nil, ErrTicketNotActive
	}

	return r.GetByTicketNumber(ctx, ticketNumber)
}

// InsertTicketsTx persists a freshly built ticket set inside the caller's
// transaction. All-or-nothing: any failure (including a uniqueness
// collision) aborts the whole insert.
func InsertTicketsTx(tx *gorm.DB, ticketSet []Ticket) error {
	if len(ticketSet) == 0 {
		return errors.New("no tickets to insert")
	}
	return tx.Create(&ticketSet).Error
}
