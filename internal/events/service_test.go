package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gatherly/internal/events"
	"gatherly/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) CreateEvent(ctx context.Context, event *events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.Event), args.Error(1)
}

func (m *mockEventRepo) GetAllEvents(ctx context.Context, query events.EventListQuery) ([]events.Event, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]events.Event), args.Get(1).(int64), args.Error(2)
}

func (m *mockEventRepo) UpdateEvent(ctx context.Context, event *events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) ReserveCapacity(ctx context.Context, eventID uuid.UUID, persons int) error {
	return m.Called(ctx, eventID, persons).Error(0)
}

func sampleEvent(id uuid.UUID) *events.Event {
	return &events.Event{
		ID:          id,
		Name:        "Indie Music Night",
		Venue:       "Riverside Amphitheater",
		DateTime:    time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
		MaxCapacity: 500,
		Status:      events.StatusPublished,
		Passes:      events.PassList{{Type: "Stag", Price: 499, Quantity: 300}},
	}
}

func TestGetEvent_CacheMissFetchesAndStores(t *testing.T) {
	repo := &mockEventRepo{}
	client, redisMock := redismock.NewClientMock()
	svc := events.NewService(repo, cache.NewService(client), 5*time.Minute)

	ctx := context.Background()
	id := uuid.New()
	event := sampleEvent(id)
	key := "gatherly:events:" + id.String()

	redisMock.ExpectGet(key).RedisNil()
	repo.On("GetEventByID", ctx, id).Return(event, nil)

	cached, err := json.Marshal(event.ToResponse())
	require.NoError(t, err)
	redisMock.ExpectSet(key, cached, 5*time.Minute).SetVal("OK")

	resp, err := svc.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ID)
	assert.Equal(t, "Indie Music Night", resp.Name)

	assert.NoError(t, redisMock.ExpectationsWereMet())
	repo.AssertExpectations(t)
}

func TestGetEvent_CacheHitSkipsRepository(t *testing.T) {
	repo := &mockEventRepo{}
	client, redisMock := redismock.NewClientMock()
	svc := events.NewService(repo, cache.NewService(client), 5*time.Minute)

	ctx := context.Background()
	id := uuid.New()
	key := "gatherly:events:" + id.String()

	cached, err := json.Marshal(sampleEvent(id).ToResponse())
	require.NoError(t, err)
	redisMock.ExpectGet(key).SetVal(string(cached))

	resp, err := svc.GetEvent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Indie Music Night", resp.Name)

	repo.AssertNotCalled(t, "GetEventByID", mock.Anything, mock.Anything)
}

func TestUpdateEvent_InvalidatesCache(t *testing.T) {
	repo := &mockEventRepo{}
	client, redisMock := redismock.NewClientMock()
	svc := events.NewService(repo, cache.NewService(client), 5*time.Minute)

	ctx := context.Background()
	id := uuid.New()
	adminID := uuid.New()
	event := sampleEvent(id)

	repo.On("GetEventByID", ctx, id).Return(event, nil)
	repo.On("UpdateEvent", ctx, mock.AnythingOfType("*events.Event")).Return(nil)
	redisMock.ExpectDel("gatherly:events:" + id.String()).SetVal(1)

	newName := "Indie Music Night (Rescheduled)"
	resp, err := svc.UpdateEvent(ctx, id, adminID, events.UpdateEventRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, resp.Name)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUpdateEvent_RejectsInvalidStatus(t *testing.T) {
	repo := &mockEventRepo{}
	svc := events.NewService(repo, nil, 0)

	ctx := context.Background()
	id := uuid.New()
	repo.On("GetEventByID", ctx, id).Return(sampleEvent(id), nil)

	bad := "archived"
	_, err := svc.UpdateEvent(ctx, id, uuid.New(), events.UpdateEventRequest{Status: &bad})
	assert.Error(t, err)

	repo.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything)
}

func TestCreateEvent_RejectsDuplicatePassTypes(t *testing.T) {
	repo := &mockEventRepo{}
	svc := events.NewService(repo, nil, 0)

	_, err := svc.CreateEvent(context.Background(), uuid.New(), events.CreateEventRequest{
		Name:        "Dup Fest",
		Venue:       "Somewhere",
		DateTime:    time.Now().Add(24 * time.Hour),
		MaxCapacity: 100,
		Passes: []events.PassRequest{
			{Type: "Stag", Price: 100},
			{Type: "Stag", Price: 200},
		},
	})
	assert.Error(t, err)

	repo.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}
