package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")

	// ErrCapacityExceeded means the conditional increment did not match:
	// confirming this booking would push current_bookings past max_capacity.
	ErrCapacityExceeded = errors.New("event capacity exceeded")
)

type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAllEvents(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	UpdateEvent(ctx context.Context, event *Event) error

	// ReserveCapacity atomically claims persons seats against the event's
	// aggregate capacity ceiling.
	ReserveCapacity(ctx context.Context, eventID uuid.UUID, persons int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAllEvents(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Event{})

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		baseQuery = baseQuery.Where("name ILIKE ? OR venue ILIKE ?", pattern, pattern)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("date_time ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

func (r *repository) UpdateEvent(ctx context.Context, event *Event) error {
	result := r.db.WithContext(ctx).Save(event)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) ReserveCapacity(ctx context.Context, eventID uuid.UUID, persons int) error {
	return ReserveCapacityTx(r.db.WithContext(ctx), eventID, persons)
}

// ReserveCapacityTx performs the atomic conditional increment on whatever
// db handle it is given, so callers holding a transaction can reserve inside
// it. The WHERE clause is the capacity check: a stale-read race between a
// separate check and a separate write is impossible because both happen in
// one statement.
func ReserveCapacityTx(tx *gorm.DB, eventID uuid.UUID, persons int) error {
	if persons <= 0 {
		return fmt.Errorf("invalid reservation size: %d", persons)
	}

	result := tx.Model(&Event{}).
		Where("id = ? AND status = ? AND current_bookings + ? <= max_capacity",
			eventID, StatusPublished, persons).
		UpdateColumn("current_bookings", gorm.Expr("current_bookings + ?", persons))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Distinguish a full event from a missing/unpublished one. This
		// read is advisory only; the reservation itself already failed.
		var event Event
		if err := tx.Select("id", "status").Where("id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if !event.Status.IsBookable() {
			return fmt.Errorf("event %s is not open for booking", eventID)
		}
		return ErrCapacityExceeded
	}

	return nil
}
