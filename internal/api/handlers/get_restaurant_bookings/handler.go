package get_restaurant_bookings

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
	msgInvalidRestaurantID = "некорректный ID ресторана"
	msgMissingIdentity     = "отсутствует личность"
	msgInvalidParams       = "некорректные параметры запроса"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/restaurant/bookings/{restaurantId}
// Query params: branchId, status, date, activeOnly (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.ParseInt(mux.Vars(r)["restaurantId"], 10, 64)
	if err != nil || restaurantID <= 0 {
		h.logger.Warn("GET /restaurant/bookings/{id} - Invalid restaurant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRestaurantID)
		return
	}

	// Получаем личность из контекста (через middleware Auth)
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /restaurant/bookings/{id} - Missing identity")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	serviceReq, err := ToServiceRequest(actor, restaurantID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /restaurant/bookings/{id} - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит, что ресторан запрашивает свои бронирования
	result, err := h.service.GetRestaurantBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrForbidden):
			h.logger.Warn("GET /restaurant/bookings/{id} - Access denied: restaurant_id=%d, %s=%d",
				restaurantID, actor.Kind, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /restaurant/bookings/{id} - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /restaurant/bookings/{id} - Failed to get bookings: restaurant_id=%d, error=%v",
				restaurantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /restaurant/bookings/{id} - Bookings retrieved successfully: restaurant_id=%d, count=%d",
		restaurantID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
