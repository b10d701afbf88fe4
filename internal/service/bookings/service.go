package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	bookingRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TableReservation/internal/service/bookings/models"
	"github.com/m04kA/SMC-TableReservation/pkg/ptr"
)

// Service сервис чтения бронирований и переходов жизненного цикла
type Service struct {
	bookingRepo       BookingRepository
	txManager         TransactionManager
	notifier          Notifier
	publisher         EventPublisher
	metrics           Metrics
	lenientCompletion bool
	timeProvider      TimeProvider
	logger            Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// lenientCompletion разрешает завершать бронирование из confirmed, минуя arrived.
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	publisher EventPublisher,
	metrics Metrics,
	lenientCompletion bool,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:       bookingRepo,
		txManager:         txManager,
		notifier:          notifier,
		publisher:         publisher,
		metrics:           metrics,
		lenientCompletion: lenientCompletion,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
	}
}

// GetByID получает бронирование по ID.
// Видно пользователю-владельцу и ресторану, которому принадлежит филиал.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for %s=%d", id, actor.Kind, actor.ID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !actor.CanManage(booking) {
		s.logger.Warn("GetByID: access denied for %s=%d to booking id=%d", actor.Kind, actor.ID, id)
		return nil, ErrForbidden
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя, сначала новые
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d", req.UserID)

	filter := domain.BookingsFilter{
		UserID: ptr.Ptr(req.UserID),
		Date:   req.Date,
	}

	// Конвертируем статус из строки в domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetRestaurantBookings получает бронирования всех филиалов ресторана.
// Доступно только самому ресторану.
func (s *Service) GetRestaurantBookings(ctx context.Context, req *models.GetRestaurantBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetRestaurantBookings: fetching bookings for restaurant=%d by %s=%d",
		req.RestaurantID, req.Actor.Kind, req.Actor.ID)

	if !req.Actor.IsRestaurant() || req.Actor.ID != req.RestaurantID {
		s.logger.Warn("GetRestaurantBookings: access denied for %s=%d to restaurant=%d",
			req.Actor.Kind, req.Actor.ID, req.RestaurantID)
		return nil, ErrForbidden
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetRestaurantBookings: invalid filter for restaurant=%d: %v", req.RestaurantID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetRestaurantBookings: repository error for restaurant=%d: %v", req.RestaurantID, err)
		return nil, fmt.Errorf("%w: GetRestaurantBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetRestaurantBookings: successfully fetched %d bookings for restaurant=%d",
		len(bookings), req.RestaurantID)
	return models.FromDomainBookingList(bookings), nil
}

// MarkArrived отмечает приход гостей. Только ресторан, только из confirmed.
func (s *Service) MarkArrived(ctx context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.ActionArrive, bookingID, actor)
}

// MarkCompleted завершает визит. Только ресторан, из arrived (или confirmed в мягком режиме).
func (s *Service) MarkCompleted(ctx context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.ActionComplete, bookingID, actor)
}

// Cancel отменяет бронирование. Пользователь-владелец или ресторан, из pending или confirmed.
func (s *Service) Cancel(ctx context.Context, bookingID int64, actor domain.Actor) (*models.BookingResponse, error) {
	return s.transition(ctx, domain.ActionCancel, bookingID, actor)
}

// transition читает бронирование под блокировкой строки, проверяет права и допустимость перехода,
// сохраняет новый статус и после фиксации рассылает событие
func (s *Service) transition(
	ctx context.Context,
	action domain.Action,
	bookingID int64,
	actor domain.Actor,
) (*models.BookingResponse, error) {
	s.logger.Info("Transition: %s booking id=%d by %s=%d", action, bookingID, actor.Kind, actor.ID)

	target, ok := domain.TargetStatus(action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	now := s.timeProvider.Now()
	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByIDForUpdate(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Transition: booking id=%d not found", bookingID)
				return ErrBookingNotFound
			}
			s.logger.Error("Transition: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: get booking: %v", ErrInternal, err)
		}

		// Права проверяются до любых изменений
		if !actor.CanManage(booking) || (action.RestaurantOnly() && !actor.IsRestaurant()) {
			s.logger.Warn("Transition: %s=%d is not allowed to %s booking id=%d",
				actor.Kind, actor.ID, action, bookingID)
			return ErrForbidden
		}

		if !domain.CanTransition(action, booking.Status, s.lenientCompletion) {
			s.logger.Warn("Transition: cannot %s booking id=%d in status %s", action, bookingID, booking.Status)
			return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, booking.Status)
		}

		applyTransition(booking, action, target, actor.Kind, now)

		if err := s.bookingRepo.UpdateStatus(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Transition: failed to update booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: update booking: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transition: booking id=%d is now %s", result.ID, result.Status)
	if s.metrics != nil {
		s.metrics.IncTransition(string(action))
	}

	s.emit(ctx, domain.NewBookingEvent(domain.EventForAction(action), result, actor.Kind, now))

	return models.FromDomainBooking(result), nil
}

func applyTransition(
	booking *domain.Booking,
	action domain.Action,
	target domain.BookingStatus,
	by domain.ActorKind,
	now time.Time,
) {
	booking.Status = target
	booking.UpdatedAt = now

	switch action {
	case domain.ActionArrive:
		booking.ArrivedAt = ptr.Ptr(now)
	case domain.ActionComplete:
		booking.CompletedAt = ptr.Ptr(now)
	case domain.ActionCancel:
		booking.CancelledAt = ptr.Ptr(now)
		booking.CancelledBy = ptr.Ptr(by)
	}
}

func (s *Service) emit(ctx context.Context, event domain.BookingEvent) {
	if s.notifier != nil {
		s.notifier.Publish(event)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Transition: failed to publish %s for booking id=%d: %v", event.Type, event.BookingID, err)
		}
	}
}
