package realtime

import (
	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

// Notifier маршрутизирует события бронирований: владельцу филиала и, для действий ресторана, гостю
type Notifier struct {
	registry *Registry
}

func NewNotifier(registry *Registry) *Notifier {
	return &Notifier{registry: registry}
}

// Publish доставляет событие ресторану-владельцу. События, инициированные рестораном,
// дополнительно получает пользователь, чье бронирование изменилось.
func (n *Notifier) Publish(event domain.BookingEvent) {
	n.registry.Notify(event.RestaurantID, domain.ActorRestaurant, event.Type, event)

	if event.Actor == domain.ActorRestaurant {
		n.registry.Notify(event.UserID, domain.ActorUser, event.Type, event)
	}
}
