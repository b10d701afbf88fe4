package domain

import "time"

// EventType типы событий, которые сервер отправляет клиентам по WebSocket
type EventType string

const (
	EventNewBooking            EventType = "new_booking"
	EventBookingCancelled      EventType = "booking_cancelled"
	EventBookingArrived        EventType = "booking_arrived"
	EventBookingCompleted      EventType = "booking_completed"
	EventConnectionEstablished EventType = "connection_established"
	EventHeartbeat             EventType = "heartbeat"
	EventError                 EventType = "error"
)

// EventForAction сопоставляет переход жизненного цикла и событие
func EventForAction(action Action) EventType {
	switch action {
	case ActionArrive:
		return EventBookingArrived
	case ActionComplete:
		return EventBookingCompleted
	default:
		return EventBookingCancelled
	}
}

// BookingEvent полезная нагрузка событий жизненного цикла
type BookingEvent struct {
	Type         EventType     `json:"type"`
	BookingID    int64         `json:"bookingId"`
	UserID       int64         `json:"userId"`
	BranchID     int64         `json:"branchId"`
	RestaurantID int64         `json:"restaurantId"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	PartySize    int           `json:"partySize"`
	Status       BookingStatus `json:"status"`
	Actor        ActorKind     `json:"actor,omitempty"`
	OccurredAt   time.Time     `json:"occurredAt"`
}

// NewBookingEvent строит событие по текущему состоянию бронирования
func NewBookingEvent(eventType EventType, b *Booking, actor ActorKind, at time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    b.ID,
		UserID:       b.UserID,
		BranchID:     b.BranchID,
		RestaurantID: b.RestaurantID,
		Date:         b.BookingDate.Format(DateFormat),
		Time:         b.StartTime.String(),
		PartySize:    b.PartySize,
		Status:       b.Status,
		Actor:        actor,
		OccurredAt:   at.UTC(),
	}
}
