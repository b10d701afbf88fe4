package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	branchRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/branch"
	"github.com/m04kA/SMC-TableReservation/internal/service/slots"
)

const (
	rejectBranchNotFound   = "branch_not_found"
	rejectInvalidSlot      = "invalid_slot"
	rejectCapacityExceeded = "capacity_exceeded"
	rejectInvalidInput     = "invalid_input"
)

// UseCase use case для создания бронирования
type UseCase struct {
	branchRepo    BranchRepository
	bookingRepo   BookingRepository
	txManager     TransactionManager
	notifier      Notifier
	publisher     EventPublisher
	metrics       Metrics
	initialStatus domain.BookingStatus
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case.
// initialStatus - статус новых бронирований (confirmed или pending); metrics может быть nil.
func NewUseCase(
	branchRepo BranchRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	publisher EventPublisher,
	metrics Metrics,
	initialStatus domain.BookingStatus,
	logger Logger,
) *UseCase {
	if initialStatus != domain.StatusPending {
		initialStatus = domain.StatusConfirmed
	}
	return &UseCase{
		branchRepo:    branchRepo,
		bookingRepo:   bookingRepo,
		txManager:     txManager,
		notifier:      notifier,
		publisher:     publisher,
		metrics:       metrics,
		initialStatus: initialStatus,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка мест и запись выполняются в одной транзакции под блокировкой строки филиала,
// поэтому конкурентные запросы к одному филиалу не могут вместе превысить вместимость.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, branch=%d, date=%s, time=%s, party=%d",
		req.UserID, req.BranchID, req.Date.Format(domain.DateFormat), req.StartTime, req.PartySize)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.reject(rejectInvalidInput)
		return nil, err
	}

	// 2. Получаем текущее время; дата брони - календарный день в UTC
	now := uc.timeProvider.Now()
	day := domain.CalendarDay(req.Date)

	var (
		result    *domain.Booking
		remaining int
	)

	// 3. Проверка и запись в одной транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем филиал: создания бронирований филиала выполняются по очереди
		branch, err := uc.branchRepo.GetByIDForUpdate(txCtx, req.BranchID)
		if err != nil {
			if errors.Is(err, branchRepo.ErrBranchNotFound) {
				uc.logger.Warn("CreateBooking: branch id=%d not found", req.BranchID)
				return ErrBranchNotFound
			}
			uc.logger.Error("CreateBooking: failed to get branch id=%d: %v", req.BranchID, err)
			return fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
		}

		// 3.2. Бронирования филиала на дату, прочитанные после блокировки
		bookings, err := uc.bookingRepo.ListForCapacity(txCtx, branch.ID, day)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 3.3. Пересчитываем свободные места
		availability, err := slots.ComputeAvailability(branch, day, bookings, now)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to compute availability for branch id=%d: %v", branch.ID, err)
			return fmt.Errorf("%w: failed to compute availability: %v", ErrInternal, err)
		}

		// 3.4. Время должно входить в сетку слотов на дату
		slot, err := slots.FindSlot(availability, req.StartTime)
		if err != nil {
			uc.logger.Warn("CreateBooking: %s on %s is not a bookable slot of branch id=%d",
				req.StartTime, day.Format(domain.DateFormat), branch.ID)
			return ErrInvalidSlot
		}

		// 3.5. Проверяем вместимость
		if !slot.Fits(req.PartySize) {
			uc.logger.Warn("CreateBooking: slot %s is full, %d seats left, %d requested",
				slot.StartTime, slot.RemainingSeats, req.PartySize)
			return ErrCapacityExceeded
		}

		// 3.6. Создаем бронирование
		booking := &domain.Booking{
			UserID:          req.UserID,
			BranchID:        branch.ID,
			RestaurantID:    branch.RestaurantID,
			BookingDate:     day,
			StartTime:       req.StartTime,
			PartySize:       req.PartySize,
			Status:          uc.initialStatus,
			DurationMinutes: branch.ReservationDurationMinutes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		remaining = slot.RemainingSeats - req.PartySize
		return nil
	})

	if err != nil {
		uc.rejectByError(err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, status=%s", result.ID, result.Status)
	if uc.metrics != nil {
		uc.metrics.IncBookingCreated(string(result.Status))
	}

	// 4. Уведомляем ресторан после фиксации транзакции
	uc.emit(ctx, domain.NewBookingEvent(domain.EventNewBooking, result, domain.ActorUser, now))

	return &Response{
		ID:             result.ID,
		UserID:         result.UserID,
		BranchID:       result.BranchID,
		RestaurantID:   result.RestaurantID,
		BookingDate:    result.BookingDate,
		StartTime:      result.StartTime,
		EndTime:        result.EndTime(),
		PartySize:      result.PartySize,
		Status:         string(result.Status),
		RemainingSeats: remaining,
		CreatedAt:      result.CreatedAt,
	}, nil
}

func (uc *UseCase) emit(ctx context.Context, event domain.BookingEvent) {
	if uc.notifier != nil {
		uc.notifier.Publish(event)
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Warn("CreateBooking: failed to publish %s for booking id=%d: %v", event.Type, event.BookingID, err)
		}
	}
}

func (uc *UseCase) rejectByError(err error) {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		uc.reject(rejectCapacityExceeded)
	case errors.Is(err, ErrInvalidSlot):
		uc.reject(rejectInvalidSlot)
	case errors.Is(err, ErrBranchNotFound):
		uc.reject(rejectBranchNotFound)
	}
}

func (uc *UseCase) reject(reason string) {
	if uc.metrics != nil {
		uc.metrics.IncBookingRejected(reason)
	}
}
