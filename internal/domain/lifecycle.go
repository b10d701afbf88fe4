package domain

// Action a lifecycle transition requested on a booking
type Action string

const (
	ActionArrive   Action = "arrive"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

var transitionMap = map[Action][]BookingStatus{
	ActionArrive:   {StatusConfirmed},
	ActionComplete: {StatusArrived},
	ActionCancel:   {StatusPending, StatusConfirmed},
}

var transitionTargets = map[Action]BookingStatus{
	ActionArrive:   StatusArrived,
	ActionComplete: StatusCompleted,
	ActionCancel:   StatusCancelled,
}

// CanTransition reports whether action may be applied to a booking in status from.
// lenient additionally allows completing a booking that never got marked as arrived.
func CanTransition(action Action, from BookingStatus, lenient bool) bool {
	if lenient && action == ActionComplete && from == StatusConfirmed {
		return true
	}
	for _, status := range transitionMap[action] {
		if status == from {
			return true
		}
	}
	return false
}

// TargetStatus returns the status a booking ends up in after action
func TargetStatus(action Action) (BookingStatus, bool) {
	status, ok := transitionTargets[action]
	return status, ok
}

// RestaurantOnly returns true for actions a user may not perform
func (a Action) RestaurantOnly() bool {
	return a == ActionArrive || a == ActionComplete
}

// actionOrder порядок действий в ответах API
var actionOrder = []Action{ActionArrive, ActionComplete, ActionCancel}

// AvailableActions действия, которые actor может применить к брони в статусе status.
// Права владения проверяются отдельно (Actor.CanManage).
func AvailableActions(actor Actor, status BookingStatus, lenient bool) []Action {
	actions := make([]Action, 0, len(actionOrder))
	for _, action := range actionOrder {
		if action.RestaurantOnly() && !actor.IsRestaurant() {
			continue
		}
		if CanTransition(action, status, lenient) {
			actions = append(actions, action)
		}
	}
	return actions
}
