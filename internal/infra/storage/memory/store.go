// Package memory хранилище в памяти процесса для локального запуска и тестов.
// Реализует те же контракты, что и PostgreSQL-репозитории.
package memory

import (
	"sync"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// Store общее состояние репозиториев
type Store struct {
	mu       sync.RWMutex
	branches map[int64]*domain.Branch
	bookings map[int64]*domain.Booking
	nextID   int64
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		branches: make(map[int64]*domain.Branch),
		bookings: make(map[int64]*domain.Booking),
		now:      time.Now,
	}
}

// SetClock подменяет источник времени для created_at/updated_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PutBranch добавляет или заменяет филиал
func (s *Store) PutBranch(b domain.Branch) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	b.UpdatedAt = s.now()
	s.branches[b.ID] = &b
	return nil
}

func (s *Store) snapshot() map[int64]*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]*domain.Booking, len(s.bookings))
	for id, b := range s.bookings {
		out[id] = copyBooking(b)
	}
	return out
}

func (s *Store) restore(bookings map[int64]*domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = bookings
}

func copyBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.ArrivedAt != nil {
		t := *b.ArrivedAt
		c.ArrivedAt = &t
	}
	if b.CompletedAt != nil {
		t := *b.CompletedAt
		c.CompletedAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	if b.CancelledBy != nil {
		k := *b.CancelledBy
		c.CancelledBy = &k
	}
	return &c
}
