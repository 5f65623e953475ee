package events

import (
	"context"
	"fmt"
	"time"

	"gatherly/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for event business logic
type Service interface {
	CreateEvent(ctx context.Context, createdBy uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateEvent(ctx context.Context, id, updatedBy uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

// NewService creates a new event service instance. cache may be nil, in
// which case reads go straight to the database.
func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
	}
}

func eventCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("gatherly:events:%s", id)
}

func (s *service) CreateEvent(ctx context.Context, createdBy uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	passes := make(PassList, 0, len(req.Passes))
	seen := make(map[string]bool, len(req.Passes))
	for _, p := range req.Passes {
		if seen[p.Type] {
			return nil, fmt.Errorf("duplicate pass type: %s", p.Type)
		}
		seen[p.Type] = true
		passes = append(passes, Pass{Type: p.Type, Price: p.Price, Quantity: p.Quantity})
	}

	event := &Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		DateTime:    req.DateTime,
		MaxCapacity: req.MaxCapacity,
		Passes:      passes,
		Status:      StatusDraft,
		CreatedBy:   createdBy,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	if s.cache != nil {
		var cached EventResponse
		if err := s.cache.Get(ctx, eventCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := event.ToResponse()
	if s.cache != nil {
		// Best effort; a cold cache is not an error
		_ = s.cache.Set(ctx, eventCacheKey(id), resp, s.cacheTTL)
	}
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	events, totalCount, err := s.repo.GetAllEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func (s *service) UpdateEvent(ctx context.Context, id, updatedBy uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.DateTime != nil {
		event.DateTime = *req.DateTime
	}
	if req.Status != nil {
		status := EventStatus(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid event status: %s", *req.Status)
		}
		event.Status = status
	}
	event.UpdatedBy = &updatedBy

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, eventCacheKey(id))
	}

	resp := event.ToResponse()
	return &resp, nil
}
