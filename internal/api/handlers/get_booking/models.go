package get_booking

import (
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
)

// BookingDetailsResponse бронь столика и действия, доступные запросившему
type BookingDetailsResponse struct {
	models.BookingResponse

	// Для гостя только cancel; ресторану еще arrive и complete по статусу брони
	AvailableActions []domain.Action `json:"availableActions"`
}

func newBookingDetails(booking *models.BookingResponse, actor domain.Actor, lenient bool) *BookingDetailsResponse {
	return &BookingDetailsResponse{
		BookingResponse:  *booking,
		AvailableActions: domain.AvailableActions(actor, domain.BookingStatus(booking.Status), lenient),
	}
}
