package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// BranchRepository интерфейс репозитория филиалов
type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListForCapacity(ctx context.Context, branchID int64, date time.Time) ([]*domain.Booking, error)
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
