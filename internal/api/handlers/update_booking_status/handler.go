// Package update_booking_status переходы, которые выполняет только ресторан: приход гостей и завершение визита
package update_booking_status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingIdentity  = "отсутствует личность"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgInvalidStatus    = "переход недоступен из текущего статуса бронирования"
	msgArrived          = "гости отмечены как пришедшие"
	msgCompleted        = "визит завершен"
)

type transitionFunc func(ctx context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error)

type Handler struct {
	action     domain.Action
	transition transitionFunc
	message    string
	logger     Logger
}

// NewHandler создает обработчик перехода; поддерживаются domain.ActionArrive и domain.ActionComplete
func NewHandler(service BookingService, action domain.Action, logger Logger) (*Handler, error) {
	h := &Handler{action: action, logger: logger}

	switch action {
	case domain.ActionArrive:
		h.transition, h.message = service.MarkArrived, msgArrived
	case domain.ActionComplete:
		h.transition, h.message = service.MarkCompleted, msgCompleted
	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	return h, nil
}

// Handle POST /api/v1/restaurant/bookings/{bookingId}/arrive|complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil || bookingID <= 0 {
		h.logger.Warn("POST /restaurant/bookings/{id}/%s - Invalid booking ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /restaurant/bookings/{id}/%s - Missing identity", h.action)
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	booking, err := h.transition(r.Context(), bookingID, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /restaurant/bookings/{id}/%s - Booking not found: booking_id=%d", h.action, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrForbidden):
			h.logger.Warn("POST /restaurant/bookings/{id}/%s - Access denied: booking_id=%d, %s=%d",
				h.action, bookingID, actor.Kind, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("POST /restaurant/bookings/{id}/%s - Invalid transition: booking_id=%d", h.action, bookingID)
			handlers.RespondConflict(w, handlers.KindInvalidTransition, msgInvalidStatus)

		default:
			h.logger.Error("POST /restaurant/bookings/{id}/%s - Failed: booking_id=%d, error=%v", h.action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /restaurant/bookings/{id}/%s - Done: booking_id=%d, status=%s", h.action, bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, handlers.MessageResponse{Message: h.message, Data: booking})
}
