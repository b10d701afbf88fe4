package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TableReservation/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-TableReservation/internal/usecase/get_availability"
)

const (
	msgInvalidBranchID = "некорректный ID филиала"
	msgMissingDate     = "дата обязательна"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgBranchNotFound  = "филиал не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/branches/{branchId}/availability
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.ParseInt(mux.Vars(r)["branchId"], 10, 64)
	if err != nil || branchID <= 0 {
		h.logger.Warn("GET /branches/{id}/availability - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /branches/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(branchID, dateStr)
	if err != nil {
		h.logger.Warn("GET /branches/{id}/availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrBranchNotFound):
			h.logger.Warn("GET /branches/{id}/availability - Branch not found: branch_id=%d", branchID)
			handlers.RespondError(w, http.StatusNotFound, handlers.KindBranchNotFound, msgBranchNotFound)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /branches/{id}/availability - Invalid input: branch_id=%d, error=%v", branchID, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("GET /branches/{id}/availability - Failed to get availability: branch_id=%d, error=%v",
				branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /branches/{id}/availability - Availability retrieved: branch_id=%d, date=%s, slots_count=%d",
		branchID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
