package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
)

func testBranch() *domain.Branch {
	return &domain.Branch{
		ID:                         1,
		RestaurantID:               100,
		OpeningTime:                ts("09:00"),
		ClosingTime:                ts("17:00"),
		TablesCount:                3,
		SeatsCount:                 10,
		BookingIntervalMinutes:     30,
		ReservationDurationMinutes: 90,
	}
}

func booking(id int64, day time.Time, start string, party int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:           id,
		UserID:       id,
		BranchID:     1,
		RestaurantID: 100,
		BookingDate:  day,
		StartTime:    ts(start),
		PartySize:    party,
		Status:       status,
	}
}

func TestComputeAvailability_CountsOnlyCapacityStatuses(t *testing.T) {
	day := date(2025, 3, 11)
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	bookings := []*domain.Booking{
		booking(1, day, "12:00", 4, domain.StatusConfirmed),
		booking(2, day, "12:00", 2, domain.StatusPending),
		booking(3, day, "12:00", 3, domain.StatusCancelled),
		booking(4, day, "12:00", 5, domain.StatusCompleted),
		booking(5, day, "12:30", 1, domain.StatusConfirmed),
		booking(6, date(2025, 3, 12), "12:00", 8, domain.StatusConfirmed),
	}

	availability, err := ComputeAvailability(testBranch(), day, bookings, now)
	require.NoError(t, err)

	byTime := ToMap(availability)
	assert.Equal(t, 4, byTime["12:00"])
	assert.Equal(t, 9, byTime["12:30"])
	assert.Equal(t, 10, byTime["09:00"])
	assert.Equal(t, 10, byTime["15:30"])
	_, ok := byTime["16:00"]
	assert.False(t, ok, "last hour must not be bookable")

	noon, err := FindSlot(availability, ts("12:00"))
	require.NoError(t, err)
	assert.Equal(t, 1, noon.RemainingTables)
	assert.True(t, noon.Fits(4))
	assert.False(t, noon.Fits(5))
}

func TestComputeAvailability_IgnoresOtherBranches(t *testing.T) {
	day := date(2025, 3, 11)
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	other := booking(1, day, "12:00", 6, domain.StatusConfirmed)
	other.BranchID = 2

	availability, err := ComputeAvailability(testBranch(), day, []*domain.Booking{other}, now)
	require.NoError(t, err)
	assert.Equal(t, 10, ToMap(availability)["12:00"])
}

func TestComputeAvailability_ArrivedCountsOnlyInCurrentSlot(t *testing.T) {
	day := date(2025, 3, 10)
	now := time.Date(2025, 3, 10, 12, 10, 0, 0, time.UTC) // текущий слот 12:30

	bookings := []*domain.Booking{
		booking(1, day, "12:30", 4, domain.StatusArrived),
		booking(2, day, "13:00", 3, domain.StatusArrived),
	}

	availability, err := ComputeAvailability(testBranch(), day, bookings, now)
	require.NoError(t, err)

	byTime := ToMap(availability)
	assert.Equal(t, 6, byTime["12:30"])
	assert.Equal(t, 10, byTime["13:00"])
}

func TestComputeAvailability_ArrivedIgnoredOnOtherDays(t *testing.T) {
	day := date(2025, 3, 11)
	now := time.Date(2025, 3, 10, 12, 10, 0, 0, time.UTC)

	availability, err := ComputeAvailability(testBranch(), day,
		[]*domain.Booking{booking(1, day, "12:30", 4, domain.StatusArrived)}, now)
	require.NoError(t, err)
	assert.Equal(t, 10, ToMap(availability)["12:30"])
}

func TestFindSlot_NotFound(t *testing.T) {
	availability, err := ComputeAvailability(testBranch(), date(2025, 3, 11), nil,
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = FindSlot(availability, ts("12:15"))
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = FindSlot(availability, ts("16:30"))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
