package get_user_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	"github.com/m04kA/SMC-TableReservation/internal/domain"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgOnlyUsers     = "история бронирований доступна только пользователям"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus = "некорректный статус бронирования"
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

// Handle GET /api/v1/bookings
// Query params: status, date (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if !actor.IsUser() {
		h.logger.Warn("GET /bookings - %s=%d is not a user", actor.Kind, actor.ID)
		handlers.RespondForbidden(w, msgOnlyUsers)
		return
	}

	serviceReq := &models.GetUserBookingsRequest{UserID: actor.ID}

	// Получаем status из query параметров (опционально)
	if status := r.URL.Query().Get("status"); status != "" {
		serviceReq.Status = &status
	}

	// Получаем date из query параметров (опционально)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			h.logger.Warn("GET /bookings - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		serviceReq.Date = &date
	}

	result, err := h.service.GetUserBookings(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /bookings - Invalid filter: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /bookings - Failed to get bookings: user_id=%d, error=%v", actor.ID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings - Bookings retrieved successfully: user_id=%d, count=%d",
		actor.ID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
