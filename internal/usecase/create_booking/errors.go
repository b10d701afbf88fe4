package create_booking

import "errors"

var (
	// ErrBranchNotFound возвращается, когда филиал не найден
	ErrBranchNotFound = errors.New("create_booking: branch not found")

	// ErrInvalidSlot возвращается, когда время не входит в сетку слотов филиала на дату
	ErrInvalidSlot = errors.New("create_booking: time is not a bookable slot")

	// ErrCapacityExceeded возвращается, когда в слоте недостаточно свободных мест
	ErrCapacityExceeded = errors.New("create_booking: not enough seats left in slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
