package slots

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// Availability свободные места в одном слоте
type Availability struct {
	StartTime       types.TimeString
	RemainingSeats  int
	TotalSeats      int
	RemainingTables int
	TotalTables     int
}

// Fits returns true if a party of the given size can still be seated
func (a Availability) Fits(partySize int) bool {
	return a.RemainingSeats >= partySize
}

// ComputeAvailability считает свободные места по каждому слоту филиала на дату.
//
// Места занимают брони в статусах pending и confirmed со временем, равным слоту.
// Arrived-бронь занимает место только в текущем (округленном) слоте сегодняшнего дня:
// гость сидит за столом сейчас, но не блокирует последующие слоты того же дня.
// Completed и cancelled места не занимают.
func ComputeAvailability(
	branch *domain.Branch,
	date time.Time,
	bookings []*domain.Booking,
	now time.Time,
) ([]Availability, error) {
	timeSlots, err := GenerateSlots(
		branch.OpeningTime,
		branch.ClosingTime,
		branch.BookingIntervalMinutes,
		date,
		now,
	)
	if err != nil {
		return nil, err
	}

	var current types.TimeString
	if domain.IsSameDay(date, now.UTC()) {
		current = CurrentSlot(now.UTC(), branch.BookingIntervalMinutes, branch.OpeningTime)
	}

	result := make([]Availability, len(timeSlots))
	for i, slot := range timeSlots {
		seats, tables := consumed(branch.ID, date, slot, current, bookings)

		remainingTables := branch.TablesCount - tables
		if remainingTables < 0 {
			remainingTables = 0
		}

		result[i] = Availability{
			StartTime:       slot,
			RemainingSeats:  branch.SeatsCount - seats,
			TotalSeats:      branch.SeatsCount,
			RemainingTables: remainingTables,
			TotalTables:     branch.TablesCount,
		}
	}

	return result, nil
}

// FindSlot ищет слот в результате ComputeAvailability
func FindSlot(availability []Availability, t types.TimeString) (Availability, error) {
	for _, a := range availability {
		if a.StartTime.Equal(t) {
			return a, nil
		}
	}
	return Availability{}, ErrSlotNotFound
}

// ToMap представление "HH:MM" -> свободные места
func ToMap(availability []Availability) map[string]int {
	out := make(map[string]int, len(availability))
	for _, a := range availability {
		out[a.StartTime.String()] = a.RemainingSeats
	}
	return out
}

// consumed возвращает занятые места и столы в слоте
func consumed(
	branchID int64,
	date time.Time,
	slot types.TimeString,
	current types.TimeString,
	bookings []*domain.Booking,
) (seats int, tables int) {
	for _, b := range bookings {
		if b.BranchID != branchID || !b.IsOnDate(date) || !b.StartTime.Equal(slot) {
			continue
		}
		if !occupiesSlot(b, slot, current) {
			continue
		}
		seats += b.PartySize
		tables++
	}
	return seats, tables
}

func occupiesSlot(b *domain.Booking, slot, current types.TimeString) bool {
	switch b.Status {
	case domain.StatusPending, domain.StatusConfirmed:
		return true
	case domain.StatusArrived:
		return !current.IsZero() && slot.Equal(current)
	default:
		return false
	}
}
