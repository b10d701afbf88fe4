package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	branchRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/branch"
	"github.com/m04kA/SMC-TableReservation/internal/service/slots"
)

// UseCase use case для получения свободных мест по слотам
type UseCase struct {
	branchRepo   BranchRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	branchRepo BranchRepository,
	bookingRepo BookingRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		branchRepo:   branchRepo,
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения свободных мест
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: branch=%d, date=%s", req.BranchID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем филиал
	branch, err := uc.branchRepo.GetByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			uc.logger.Warn("GetAvailability: branch id=%d not found", req.BranchID)
			return nil, ErrBranchNotFound
		}
		uc.logger.Error("GetAvailability: failed to get branch id=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}

	// 3. Получаем бронирования филиала на дату
	day := domain.CalendarDay(req.Date)
	bookings, err := uc.bookingRepo.ListForCapacity(ctx, branch.ID, day)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Считаем свободные места по слотам
	availability, err := slots.ComputeAvailability(branch, day, bookings, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetAvailability: failed to compute availability for branch id=%d: %v", branch.ID, err)
		return nil, fmt.Errorf("%w: failed to compute availability: %v", ErrInternal, err)
	}

	result := make([]Slot, len(availability))
	for i, a := range availability {
		result[i] = Slot{
			StartTime:       a.StartTime,
			RemainingSeats:  a.RemainingSeats,
			TotalSeats:      a.TotalSeats,
			RemainingTables: a.RemainingTables,
		}
	}

	uc.logger.Info("GetAvailability: generated %d slots for branch=%d, date=%s",
		len(result), branch.ID, day.Format(domain.DateFormat))

	return &Response{
		BranchID: branch.ID,
		Date:     day,
		Slots:    result,
	}, nil
}
