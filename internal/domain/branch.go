package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// Branch is a physical restaurant location with its own hours and capacity
type Branch struct {
	ID                         int64
	RestaurantID               int64
	Address                    string
	City                       string
	OpeningTime                types.TimeString
	ClosingTime                types.TimeString
	TablesCount                int
	SeatsCount                 int
	BookingIntervalMinutes     int
	ReservationDurationMinutes int
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Validate checks the branch configuration invariants
func (b *Branch) Validate() error {
	if err := b.OpeningTime.Validate(); err != nil {
		return fmt.Errorf("%w: opening time: %v", ErrInvalidBranch, err)
	}
	if err := b.ClosingTime.Validate(); err != nil {
		return fmt.Errorf("%w: closing time: %v", ErrInvalidBranch, err)
	}
	if !b.OpeningTime.IsBefore(b.ClosingTime) {
		return fmt.Errorf("%w: opening time %s must be before closing time %s",
			ErrInvalidBranch, b.OpeningTime, b.ClosingTime)
	}
	if b.BookingIntervalMinutes < MinBookingIntervalMinutes || b.BookingIntervalMinutes > MaxBookingIntervalMinutes {
		return fmt.Errorf("%w: booking interval %d out of range", ErrInvalidBranch, b.BookingIntervalMinutes)
	}
	if b.ReservationDurationMinutes <= 0 {
		return fmt.Errorf("%w: reservation duration must be positive", ErrInvalidBranch)
	}
	if b.SeatsCount < 0 || b.TablesCount < 0 {
		return fmt.Errorf("%w: seats and tables must be non-negative", ErrInvalidBranch)
	}
	return nil
}
