package domain

// ActorKind distinguishes end users from restaurant accounts
type ActorKind string

const (
	ActorUser       ActorKind = "user"
	ActorRestaurant ActorKind = "restaurant"
)

// Valid returns true for known kinds
func (k ActorKind) Valid() bool {
	return k == ActorUser || k == ActorRestaurant
}

// Actor is a verified identity acting on the system
type Actor struct {
	ID   int64
	Kind ActorKind
}

func (a Actor) IsUser() bool {
	return a.Kind == ActorUser
}

func (a Actor) IsRestaurant() bool {
	return a.Kind == ActorRestaurant
}

// CanManage returns true if the actor owns the booking (user) or its branch (restaurant)
func (a Actor) CanManage(b *Booking) bool {
	switch a.Kind {
	case ActorUser:
		return b.UserID == a.ID
	case ActorRestaurant:
		return b.RestaurantID == a.ID
	default:
		return false
	}
}
