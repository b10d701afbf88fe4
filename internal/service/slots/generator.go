// Package slots содержит генератор временных слотов и расчет свободных мест.
// Все функции чистые: результат зависит только от аргументов.
package slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// GenerateSlots возвращает упорядоченный список слотов филиала на дату.
//
// Слоты идут с шагом intervalMinutes начиная с openTime. Последний час перед closeTime
// не бронируется, неполный последний интервал отбрасывается. Для сегодняшней даты
// отбрасываются слоты раньше текущего времени, округленного вверх до границы интервала.
func GenerateSlots(
	openTime, closeTime types.TimeString,
	intervalMinutes int,
	bookingDate time.Time,
	now time.Time,
) ([]types.TimeString, error) {
	if err := validateSchedule(openTime, closeTime, intervalMinutes); err != nil {
		return nil, err
	}

	// "Сейчас" всегда в UTC: смещение, с которым пришла дата, не сдвигает границу прошлого
	bookingDate = domain.CalendarDay(bookingDate)
	now = now.UTC()

	// Дата в прошлом - слотов нет
	if domain.DateOnly(bookingDate).Before(domain.DateOnly(now)) {
		return []types.TimeString{}, nil
	}

	lastSlotEnd := closeTime.Minutes() - domain.LastHourExclusionMinutes

	// Шаг 1: вся сетка дня
	allSlots := make([]types.TimeString, 0)
	for start := openTime.Minutes(); start+intervalMinutes <= lastSlotEnd; start += intervalMinutes {
		slot, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			return nil, err
		}
		allSlots = append(allSlots, slot)
	}

	// Шаг 2: для будущих дат возвращаем все слоты
	if !domain.IsSameDay(bookingDate, now) {
		return allSlots, nil
	}

	// Шаг 3: сегодня - отсекаем прошедшее время
	earliest := earliestToday(now, intervalMinutes, openTime)

	available := make([]types.TimeString, 0, len(allSlots))
	for _, slot := range allSlots {
		if slot.Minutes() >= earliest {
			available = append(available, slot)
		}
	}

	return available, nil
}

// CurrentSlot время суток "сейчас", округленное вверх до границы интервала и не раньше открытия
func CurrentSlot(now time.Time, intervalMinutes int, openTime types.TimeString) types.TimeString {
	minutes := earliestToday(now, intervalMinutes, openTime)
	slot, err := types.NewTimeStringFromMinutes(minutes)
	if err != nil {
		// Округление перешло через полночь - текущего слота сегодня уже нет
		return ""
	}
	return slot
}

// IsSlot проверяет, что время входит в сетку слотов на дату
func IsSlot(slots []types.TimeString, t types.TimeString) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

// earliestToday минуты от полуночи, с которых сегодня можно бронировать
func earliestToday(now time.Time, intervalMinutes int, openTime types.TimeString) int {
	interval := time.Duration(intervalMinutes) * time.Minute
	sinceMidnight := now.Sub(domain.DateOnly(now))

	rounded := sinceMidnight.Truncate(interval)
	if rounded < sinceMidnight {
		rounded += interval
	}

	minutes := int(rounded / time.Minute)
	if minutes < openTime.Minutes() {
		return openTime.Minutes()
	}
	return minutes
}

func validateSchedule(openTime, closeTime types.TimeString, intervalMinutes int) error {
	if err := openTime.Validate(); err != nil {
		return fmt.Errorf("%w: opening time: %v", ErrInvalidSchedule, err)
	}
	if err := closeTime.Validate(); err != nil {
		return fmt.Errorf("%w: closing time: %v", ErrInvalidSchedule, err)
	}
	if !openTime.IsBefore(closeTime) {
		return fmt.Errorf("%w: opening time %s is not before closing time %s", ErrInvalidSchedule, openTime, closeTime)
	}
	if intervalMinutes <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidSchedule, intervalMinutes)
	}
	return nil
}
