package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrForbidden возвращается, когда личность не владеет бронированием или филиалом
	ErrForbidden = errors.New("bookings: forbidden")

	// ErrInvalidTransition возвращается, когда переход недопустим из текущего статуса
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
