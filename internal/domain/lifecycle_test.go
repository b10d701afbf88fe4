package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		action  Action
		from    BookingStatus
		lenient bool
		valid   bool
	}{
		{ActionArrive, StatusConfirmed, false, true},
		{ActionArrive, StatusPending, false, false},
		{ActionArrive, StatusCancelled, false, false},
		{ActionArrive, StatusCompleted, false, false},
		{ActionArrive, StatusArrived, false, false},
		{ActionComplete, StatusArrived, false, true},
		{ActionComplete, StatusConfirmed, false, false},
		{ActionComplete, StatusConfirmed, true, true},
		{ActionComplete, StatusPending, true, false},
		{ActionComplete, StatusCompleted, true, false},
		{ActionCancel, StatusConfirmed, false, true},
		{ActionCancel, StatusPending, false, true},
		{ActionCancel, StatusArrived, false, false},
		{ActionCancel, StatusCancelled, false, false},
		{ActionCancel, StatusCompleted, true, false},
		{Action("unknown"), StatusConfirmed, true, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.action, tt.from, tt.lenient); got != tt.valid {
			t.Fatalf("CanTransition(%q, %q, %v)=%v, want %v", tt.action, tt.from, tt.lenient, got, tt.valid)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range []BookingStatus{StatusCompleted, StatusCancelled} {
		for action := range transitionMap {
			if CanTransition(action, from, true) {
				t.Fatalf("terminal status %q allows %q", from, action)
			}
		}
	}
}

func TestTargetStatus(t *testing.T) {
	cases := map[Action]BookingStatus{
		ActionArrive:   StatusArrived,
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	}
	for action, want := range cases {
		got, ok := TargetStatus(action)
		if !ok || got != want {
			t.Fatalf("TargetStatus(%q)=%q,%v want %q", action, got, ok, want)
		}
	}
	if _, ok := TargetStatus("teleport"); ok {
		t.Fatal("unexpected target for unknown action")
	}
}

func TestAvailableActions(t *testing.T) {
	user := Actor{ID: 5, Kind: ActorUser}
	restaurant := Actor{ID: 77, Kind: ActorRestaurant}

	cases := []struct {
		actor   Actor
		status  BookingStatus
		lenient bool
		want    []Action
	}{
		{user, StatusConfirmed, false, []Action{ActionCancel}},
		{user, StatusArrived, true, []Action{}},
		{restaurant, StatusConfirmed, false, []Action{ActionArrive, ActionCancel}},
		{restaurant, StatusConfirmed, true, []Action{ActionArrive, ActionComplete, ActionCancel}},
		{restaurant, StatusPending, false, []Action{ActionCancel}},
		{restaurant, StatusArrived, false, []Action{ActionComplete}},
		{restaurant, StatusCompleted, true, []Action{}},
	}

	for _, tt := range cases {
		got := AvailableActions(tt.actor, tt.status, tt.lenient)
		if len(got) != len(tt.want) {
			t.Fatalf("AvailableActions(%s, %q, %v)=%v, want %v", tt.actor.Kind, tt.status, tt.lenient, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("AvailableActions(%s, %q, %v)=%v, want %v", tt.actor.Kind, tt.status, tt.lenient, got, tt.want)
			}
		}
	}
}
