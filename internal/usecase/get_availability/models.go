package get_availability

import (
	"time"

	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

// Request модель запроса свободных мест филиала на дату
type Request struct {
	BranchID int64
	Date     time.Time // Дата (без времени)
}

// Response модель ответа; слоты упорядочены по времени
type Response struct {
	BranchID int64
	Date     time.Time
	Slots    []Slot
}

// Slot свободные места в слоте
type Slot struct {
	StartTime       types.TimeString
	RemainingSeats  int
	TotalSeats      int
	RemainingTables int
}

// Remaining представление "HH:MM" -> свободные места
func (r *Response) Remaining() map[string]int {
	out := make(map[string]int, len(r.Slots))
	for _, s := range r.Slots {
		out[s.StartTime.String()] = s.RemainingSeats
	}
	return out
}
