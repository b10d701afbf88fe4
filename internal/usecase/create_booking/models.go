package create_booking

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64            // ID пользователя
	BranchID  int64            // ID филиала
	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время слота (например, "19:00")
	PartySize int              // Количество гостей
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64
	UserID         int64
	BranchID       int64
	RestaurantID   int64
	BookingDate    time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	PartySize      int
	Status         string
	RemainingSeats int // свободные места в слоте после записи
	CreatedAt      time.Time
}
