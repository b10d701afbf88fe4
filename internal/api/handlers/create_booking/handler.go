package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	"github.com/m04kA/SMC-TableReservation/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-TableReservation/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата, ожидается ISO 8601 с точностью до минуты"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgBranchNotFound     = "филиал не найден"
	msgInvalidSlot        = "выбранное время не входит в доступные слоты"
	msgCapacityExceeded   = "недостаточно свободных мест в выбранном слоте"
	msgInvalidInput       = "некорректные параметры бронирования"
	msgOnlyUsers          = "бронировать могут только пользователи"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем пользователя из контекста (через middleware Auth)
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user identity")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if !actor.IsUser() {
		h.logger.Warn("POST /bookings - %s=%d is not a user", actor.Kind, actor.ID)
		handlers.RespondForbidden(w, msgOnlyUsers)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(actor.ID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded: user_id=%d, branch_id=%d, time=%s, party_size=%d",
				actor.ID, req.BranchID, useCaseReq.StartTime, req.PartySize)
			handlers.RespondConflict(w, handlers.KindCapacityExceeded, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrInvalidSlot):
			h.logger.Warn("POST /bookings - Invalid slot: user_id=%d, branch_id=%d, date=%s",
				actor.ID, req.BranchID, req.Date)
			handlers.RespondError(w, http.StatusBadRequest, handlers.KindInvalidSlot, msgInvalidSlot)

		case errors.Is(err, createBooking.ErrBranchNotFound):
			h.logger.Warn("POST /bookings - Branch not found: branch_id=%d", req.BranchID)
			handlers.RespondError(w, http.StatusNotFound, handlers.KindBranchNotFound, msgBranchNotFound)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", actor.ID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, branch_id=%d, error=%v",
				actor.ID, req.BranchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, branch_id=%d",
		result.ID, actor.ID, req.BranchID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
