package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// BranchRepository интерфейс репозитория филиалов
type BranchRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Branch, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListForCapacity(ctx context.Context, branchID int64, date time.Time) ([]*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier доставка событий подключенным клиентам
type Notifier interface {
	Publish(event domain.BookingEvent)
}

// EventPublisher публикация событий во внешний брокер
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}

// Metrics счетчики бронирований
type Metrics interface {
	IncBookingCreated(status string)
	IncBookingRejected(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
