package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронь столика не найдена"
	msgMissingIdentity  = "требуется вход гостя или ресторана"
	msgForbidden        = "бронь принадлежит другому гостю или ресторану"
)

type Handler struct {
	service           BookingService
	lenientCompletion bool
	logger            Logger
}

// NewHandler lenientCompletion должен совпадать с настройкой сервиса бронирований,
// иначе список доступных действий разойдется с реальными переходами
func NewHandler(service BookingService, lenientCompletion bool, logger Logger) *Handler {
	return &Handler{
		service:           service,
		lenientCompletion: lenientCompletion,
		logger:            logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
//
// Гость видит свои брони, ресторан брони своих филиалов.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID %q", mux.Vars(r)["bookingId"])
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - Missing identity: booking_id=%d", bookingID)
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, actor)
	switch {
	case err == nil:
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("GET /bookings/{id} - Booking not found: booking_id=%d", bookingID)
		handlers.RespondNotFound(w, msgNotFound)
		return
	case errors.Is(err, bookings.ErrForbidden):
		h.logger.Warn("GET /bookings/{id} - %s=%d is not the guest or the restaurant of booking_id=%d",
			actor.Kind, actor.ID, bookingID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	default:
		h.logger.Error("GET /bookings/{id} - Failed to get booking_id=%d: %v", bookingID, err)
		handlers.RespondInternalError(w)
		return
	}

	details := newBookingDetails(booking, actor, h.lenientCompletion)

	h.logger.Info("GET /bookings/{id} - booking_id=%d (branch=%d, %s %s, status=%s) shown to %s=%d",
		booking.ID, booking.BranchID, booking.Date, booking.Time, booking.Status, actor.Kind, actor.ID)
	handlers.RespondJSON(w, http.StatusOK, details)
}
