package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/booking"
	branchRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/branch"
	"github.com/m04kA/SMC-TableReservation/pkg/ptr"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.PutBranch(domain.Branch{
		ID:                         1,
		RestaurantID:               10,
		OpeningTime:                types.MustTimeString("09:00"),
		ClosingTime:                types.MustTimeString("22:00"),
		TablesCount:                5,
		SeatsCount:                 20,
		BookingIntervalMinutes:     30,
		ReservationDurationMinutes: 90,
	}))
	return store
}

func newBooking(userID int64, day time.Time, start string, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		UserID:       userID,
		BranchID:     1,
		RestaurantID: 10,
		BookingDate:  day,
		StartTime:    types.MustTimeString(start),
		PartySize:    2,
		Status:       status,
	}
}

func TestBranchRepository(t *testing.T) {
	repo := NewBranchRepository(seededStore(t))

	b, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), b.RestaurantID)

	_, err = repo.GetByIDForUpdate(context.Background(), 2)
	assert.ErrorIs(t, err, branchRepo.ErrBranchNotFound)
}

func TestStore_PutBranchValidates(t *testing.T) {
	store := NewStore()
	err := store.PutBranch(domain.Branch{ID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidBranch)
}

func TestBookingRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(seededStore(t))
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	created, err := repo.Create(ctx, newBooking(7, day, "19:00", domain.StatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	// Изменение полученной копии не влияет на хранилище
	got.Status = domain.StatusCancelled
	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, again.Status)

	arrived := time.Date(2025, 5, 1, 18, 55, 0, 0, time.UTC)
	got.Status = domain.StatusArrived
	got.ArrivedAt = &arrived
	require.NoError(t, repo.UpdateStatus(ctx, got))

	again, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArrived, again.Status)
	require.NotNil(t, again.ArrivedAt)
	assert.True(t, again.ArrivedAt.Equal(arrived))

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, &domain.Booking{ID: 99}), bookingRepo.ErrBookingNotFound)
}

func TestBookingRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository(seededStore(t))
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	_, _ = repo.Create(ctx, newBooking(1, day, "20:00", domain.StatusConfirmed))
	_, _ = repo.Create(ctx, newBooking(2, day, "19:00", domain.StatusPending))
	_, _ = repo.Create(ctx, newBooking(1, day, "19:30", domain.StatusCancelled))
	_, _ = repo.Create(ctx, newBooking(1, nextDay, "12:00", domain.StatusConfirmed))

	onDay, err := repo.ListForCapacity(ctx, 1, day)
	require.NoError(t, err)
	require.Len(t, onDay, 2)
	assert.Equal(t, types.MustTimeString("19:00"), onDay[0].StartTime)
	assert.Equal(t, types.MustTimeString("20:00"), onDay[1].StartTime)

	byUser, err := repo.List(ctx, domain.BookingsFilter{UserID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	require.Len(t, byUser, 3)
	assert.True(t, byUser[0].BookingDate.Equal(nextDay), "newest first")

	cancelled, err := repo.List(ctx, domain.BookingsFilter{
		RestaurantID: ptr.Ptr(int64(10)),
		Status:       ptr.Ptr(domain.StatusCancelled),
	})
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	repo := NewBookingRepository(store)
	tx := NewTxManager(store)
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	err := tx.Do(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, newBooking(1, day, "19:00", domain.StatusConfirmed)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.List(ctx, domain.BookingsFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxManager_NestedReusesTransaction(t *testing.T) {
	tx := NewTxManager(NewStore())

	calls := 0
	err := tx.Do(context.Background(), func(outer context.Context) error {
		return tx.DoSerializable(outer, func(inner context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestTxManager_RollsBackAndRepanics(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	repo := NewBookingRepository(store)
	tx := NewTxManager(store)
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.PanicsWithValue(t, "unexpected", func() {
		_ = tx.Do(ctx, func(txCtx context.Context) error {
			_, _ = repo.Create(txCtx, newBooking(1, day, "19:00", domain.StatusConfirmed))
			panic("unexpected")
		})
	})

	all, err := repo.List(ctx, domain.BookingsFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	// Мьютекс освобожден: следующая транзакция не блокируется
	require.NoError(t, tx.Do(ctx, func(context.Context) error { return nil }))
}
