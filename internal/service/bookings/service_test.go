package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
	"github.com/m04kA/SMC-TableReservation/pkg/logger"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

const (
	testRestaurantID = 77
	testUserID       = 5
)

var (
	owner      = domain.Actor{ID: testUserID, Kind: domain.ActorUser}
	stranger   = domain.Actor{ID: 6, Kind: domain.ActorUser}
	restaurant = domain.Actor{ID: testRestaurantID, Kind: domain.ActorRestaurant}
	competitor = domain.Actor{ID: 78, Kind: domain.ActorRestaurant}
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (n *recordingNotifier) Publish(event domain.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) all() []domain.BookingEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.BookingEvent(nil), n.events...)
}

type countingMetrics struct{ transitions map[string]int }

func (m *countingMetrics) IncTransition(action string) { m.transitions[action]++ }

type fixture struct {
	svc      *Service
	repo     *memory.BookingRepository
	notifier *recordingNotifier
	metrics  *countingMetrics
	now      time.Time
}

func newFixture(t *testing.T, lenient bool) *fixture {
	t.Helper()

	store := memory.NewStore()
	repo := memory.NewBookingRepository(store)
	notifier := &recordingNotifier{}
	metrics := &countingMetrics{transitions: map[string]int{}}
	now := time.Date(2025, 8, 11, 18, 0, 0, 0, time.UTC)

	svc := NewService(repo, memory.NewTxManager(store), notifier, nil, metrics, lenient, logger.NewNop())
	svc.timeProvider = fixedClock{now: now}

	return &fixture{svc: svc, repo: repo, notifier: notifier, metrics: metrics, now: now}
}

func (f *fixture) seed(t *testing.T, status domain.BookingStatus, day int, start string) int64 {
	t.Helper()
	b, err := f.repo.Create(context.Background(), &domain.Booking{
		UserID:          testUserID,
		BranchID:        1,
		RestaurantID:    testRestaurantID,
		BookingDate:     time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC),
		StartTime:       types.MustTimeString(start),
		PartySize:       2,
		Status:          status,
		DurationMinutes: 90,
	})
	require.NoError(t, err)
	return b.ID
}

func TestService_FullLifecycle(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.seed(t, domain.StatusConfirmed, 11, "18:00")

	arrived, err := f.svc.MarkArrived(ctx, id, restaurant)
	require.NoError(t, err)
	assert.Equal(t, "arrived", arrived.Status)
	require.NotNil(t, arrived.ArrivedAt)

	completed, err := f.svc.MarkCompleted(ctx, id, restaurant)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, f.now, completed.UpdatedAt)

	events := f.notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventBookingArrived, events[0].Type)
	assert.Equal(t, domain.EventBookingCompleted, events[1].Type)
	assert.Equal(t, domain.ActorRestaurant, events[1].Actor)
	assert.Equal(t, 1, f.metrics.transitions["arrive"])
	assert.Equal(t, 1, f.metrics.transitions["complete"])
}

func TestService_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.BookingStatus
		actor   domain.Actor
		wantErr error
	}{
		{name: "owner cancels confirmed", status: domain.StatusConfirmed, actor: owner},
		{name: "owner cancels pending", status: domain.StatusPending, actor: owner},
		{name: "restaurant cancels confirmed", status: domain.StatusConfirmed, actor: restaurant},
		{name: "stranger is forbidden", status: domain.StatusConfirmed, actor: stranger, wantErr: ErrForbidden},
		{name: "other restaurant is forbidden", status: domain.StatusConfirmed, actor: competitor, wantErr: ErrForbidden},
		{name: "arrived cannot be cancelled", status: domain.StatusArrived, actor: owner, wantErr: ErrInvalidTransition},
		{name: "completed cannot be cancelled", status: domain.StatusCompleted, actor: restaurant, wantErr: ErrInvalidTransition},
		{name: "cancelled cannot be cancelled twice", status: domain.StatusCancelled, actor: owner, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			id := f.seed(t, tt.status, 12, "19:00")

			resp, err := f.svc.Cancel(context.Background(), id, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.notifier.all())

				stored, getErr := f.repo.GetByID(context.Background(), id)
				require.NoError(t, getErr)
				assert.Equal(t, tt.status, stored.Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "cancelled", resp.Status)
			require.NotNil(t, resp.CancelledBy)
			assert.Equal(t, string(tt.actor.Kind), *resp.CancelledBy)

			events := f.notifier.all()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventBookingCancelled, events[0].Type)
			assert.Equal(t, tt.actor.Kind, events[0].Actor)
		})
	}
}

func TestService_RestaurantOnlyTransitions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.seed(t, domain.StatusConfirmed, 11, "18:00")

	_, err := f.svc.MarkArrived(ctx, id, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.MarkArrived(ctx, id, competitor)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.MarkCompleted(ctx, id, owner)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_InvalidTransitions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	pending := f.seed(t, domain.StatusPending, 11, "18:00")
	_, err := f.svc.MarkArrived(ctx, pending, restaurant)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	confirmed := f.seed(t, domain.StatusConfirmed, 11, "18:30")
	_, err = f.svc.MarkCompleted(ctx, confirmed, restaurant)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.MarkArrived(ctx, confirmed, restaurant)
	require.NoError(t, err)
	_, err = f.svc.MarkArrived(ctx, confirmed, restaurant)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_LenientCompletion(t *testing.T) {
	f := newFixture(t, true)
	id := f.seed(t, domain.StatusConfirmed, 11, "18:00")

	resp, err := f.svc.MarkCompleted(context.Background(), id, restaurant)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
}

func TestService_NotFound(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, 999, owner)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.GetByID(ctx, 999, owner)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetByID(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.seed(t, domain.StatusConfirmed, 11, "18:00")

	resp, err := f.svc.GetByID(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-11", resp.Date)
	assert.Equal(t, "18:00", resp.Time)
	assert.Equal(t, "19:30", resp.EndTime)

	_, err = f.svc.GetByID(ctx, id, restaurant)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, id, stranger)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_GetUserBookings(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	older := f.seed(t, domain.StatusCompleted, 10, "12:00")
	newer := f.seed(t, domain.StatusConfirmed, 12, "12:00")

	resp, err := f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{UserID: testUserID})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 2)
	assert.Equal(t, newer, resp.Bookings[0].ID)
	assert.Equal(t, older, resp.Bookings[1].ID)

	status := "completed"
	resp, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{UserID: testUserID, Status: &status})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, older, resp.Bookings[0].ID)

	bad := "lost"
	_, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{UserID: testUserID, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	resp, err = f.svc.GetUserBookings(ctx, &models.GetUserBookingsRequest{UserID: 42})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
}

func TestService_GetRestaurantBookings(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.seed(t, domain.StatusConfirmed, 11, "18:00")
	f.seed(t, domain.StatusCancelled, 11, "19:00")

	resp, err := f.svc.GetRestaurantBookings(ctx, &models.GetRestaurantBookingsRequest{
		Actor:        restaurant,
		RestaurantID: testRestaurantID,
		ActiveOnly:   true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "confirmed", resp.Bookings[0].Status)

	_, err = f.svc.GetRestaurantBookings(ctx, &models.GetRestaurantBookingsRequest{
		Actor:        competitor,
		RestaurantID: testRestaurantID,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetRestaurantBookings(ctx, &models.GetRestaurantBookingsRequest{
		Actor:        owner,
		RestaurantID: testRestaurantID,
	})
	assert.ErrorIs(t, err, ErrForbidden)
}
