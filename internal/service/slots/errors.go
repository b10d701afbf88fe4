package slots

import "errors"

var (
	// ErrInvalidSchedule возвращается при некорректных часах работы или интервале
	ErrInvalidSchedule = errors.New("slots: invalid schedule")

	// ErrSlotNotFound возвращается, когда время не входит в сетку слотов на дату
	ErrSlotNotFound = errors.New("slots: time is not a bookable slot")
)
