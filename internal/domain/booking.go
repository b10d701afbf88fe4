package domain

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusArrived   BookingStatus = "arrived"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a table reservation at a branch
type Booking struct {
	ID           int64
	UserID       int64
	BranchID     int64
	RestaurantID int64 // владелец филиала, денормализован для проверки прав и маршрутизации событий
	BookingDate  time.Time
	StartTime    types.TimeString
	PartySize    int
	Status       BookingStatus

	DurationMinutes int // длительность брони на момент создания (branch.ReservationDurationMinutes)

	ArrivedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *ActorKind

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateTime returns the combined booking date and slot time
func (b *Booking) DateTime() time.Time {
	return b.StartTime.On(b.BookingDate)
}

// EndTime returns the time the table is expected to be freed
func (b *Booking) EndTime() types.TimeString {
	end, err := b.StartTime.AddMinutes(b.DurationMinutes)
	if err != nil {
		return b.StartTime
	}
	return end
}

// IsTerminal returns true if no further transitions are possible
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// IsActive returns true if the booking still holds (or may hold) a table
func (b *Booking) IsActive() bool {
	return !b.IsTerminal()
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return CanTransition(ActionCancel, b.Status, false)
}

// IsOnDate returns true if the booking is for the given calendar day
func (b *Booking) IsOnDate(date time.Time) bool {
	return IsSameDay(b.BookingDate, date)
}

// BookingsFilter фильтр выборки бронирований
type BookingsFilter struct {
	RestaurantID *int64         // Бронирования всех филиалов ресторана
	BranchID     *int64         // Конкретный филиал
	UserID       *int64         // Бронирования пользователя
	Date         *time.Time     // Конкретная дата
	Status       *BookingStatus // Конкретный статус
	ActiveOnly   bool           // Исключить completed/cancelled
}
