package domain

import (
	"errors"
	"time"
)

// Slot generation policy
const (
	// LastHourExclusionMinutes последний час перед закрытием не бронируется
	LastHourExclusionMinutes = 60

	MinBookingIntervalMinutes = 5
	MaxBookingIntervalMinutes = 240
	MinPartySize              = 1
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// CapacityStatuses статусы, которые всегда занимают места в своем слоте.
// Arrived учитывается отдельно, см. slots.ComputeAvailability.
var CapacityStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// ActiveStatuses нетерминальные статусы
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusArrived,
}

// AllStatuses все известные статусы
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusArrived,
	StatusCompleted,
	StatusCancelled,
}

// ErrInvalidBranch возвращается при нарушении инвариантов филиала
var ErrInvalidBranch = errors.New("domain: invalid branch configuration")

// ParseBookingStatus валидирует строковый статус
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// IsSameDay проверяет, что две даты относятся к одному и тому же дню
func IsSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateOnly обнуляет время, сохраняя часовой пояс
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalendarDay календарная дата t как полночь UTC.
// Даты и время слотов сервиса всегда трактуются в UTC.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
