package cancel_booking

import (
	"context"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
)

type BookingService interface {
	Cancel(ctx context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
