package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextID++
	now := r.store.now()

	booking.ID = r.store.nextID
	booking.BookingDate = domain.DateOnly(booking.BookingDate)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	r.store.bookings[booking.ID] = copyBooking(booking)
	return booking, nil
}

func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return copyBooking(b), nil
}

// GetByIDForUpdate блокировка обеспечивается TxManager
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *BookingRepository) List(_ context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range r.store.bookings {
		if matches(b, filter) {
			out = append(out, copyBooking(b))
		}
	}

	if filter.Date != nil {
		sort.Slice(out, func(i, j int) bool {
			if !out[i].StartTime.Equal(out[j].StartTime) {
				return out[i].StartTime.IsBefore(out[j].StartTime)
			}
			return out[i].ID < out[j].ID
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			di, dj := out[i].DateTime(), out[j].DateTime()
			if !di.Equal(dj) {
				return di.After(dj)
			}
			return out[i].ID > out[j].ID
		})
	}

	return out, nil
}

func (r *BookingRepository) ListForCapacity(ctx context.Context, branchID int64, date time.Time) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingsFilter{
		BranchID:   &branchID,
		Date:       &date,
		ActiveOnly: true,
	})
}

func (r *BookingRepository) UpdateStatus(_ context.Context, booking *domain.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.bookings[booking.ID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}

	updated := copyBooking(stored)
	updated.Status = booking.Status
	updated.ArrivedAt = booking.ArrivedAt
	updated.CompletedAt = booking.CompletedAt
	updated.CancelledAt = booking.CancelledAt
	updated.CancelledBy = booking.CancelledBy
	updated.UpdatedAt = booking.UpdatedAt

	r.store.bookings[booking.ID] = copyBooking(updated)
	return nil
}

func matches(b *domain.Booking, f domain.BookingsFilter) bool {
	if f.RestaurantID != nil && b.RestaurantID != *f.RestaurantID {
		return false
	}
	if f.BranchID != nil && b.BranchID != *f.BranchID {
		return false
	}
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	if f.Date != nil && !b.IsOnDate(*f.Date) {
		return false
	}
	if f.Status != nil {
		return b.Status == *f.Status
	}
	if f.ActiveOnly {
		return b.IsActive()
	}
	return true
}
