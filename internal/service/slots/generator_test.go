package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TableReservation/pkg/types"
)

func ts(s string) types.TimeString {
	return types.MustTimeString(s)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSlots_FutureDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 11), now)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, ts("09:00"), slots[0])
	assert.Equal(t, ts("20:30"), slots[len(slots)-1])
	assert.Len(t, slots, 24)

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 30, slots[i].Minutes()-slots[i-1].Minutes())
	}
}

func TestGenerateSlots_DropsPartialFinalInterval(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// 10:00-13:00, последний бронируемый конец 12:00; шаг 45 -> 10:00, 10:45 (11:30+45 > 12:00)
	slots, err := GenerateSlots(ts("10:00"), ts("13:00"), 45, date(2025, 3, 11), now)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{ts("10:00"), ts("10:45")}, slots)
}

func TestGenerateSlots_Today(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantFirst types.TimeString
		wantEmpty bool
	}{
		{
			name:      "before opening floors at opening time",
			now:       time.Date(2025, 3, 10, 7, 12, 0, 0, time.UTC),
			wantFirst: ts("09:00"),
		},
		{
			name:      "rounds up to next boundary",
			now:       time.Date(2025, 3, 10, 12, 10, 0, 0, time.UTC),
			wantFirst: ts("12:30"),
		},
		{
			name:      "exact boundary is kept",
			now:       time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
			wantFirst: ts("12:30"),
		},
		{
			name:      "seconds past boundary round up",
			now:       time.Date(2025, 3, 10, 12, 30, 1, 0, time.UTC),
			wantFirst: ts("13:00"),
		},
		{
			name:      "inside last hour yields nothing",
			now:       time.Date(2025, 3, 10, 21, 5, 0, 0, time.UTC),
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 10), tt.now)
			require.NoError(t, err)

			if tt.wantEmpty {
				assert.Empty(t, slots)
				return
			}
			require.NotEmpty(t, slots)
			assert.Equal(t, tt.wantFirst, slots[0])
			assert.Equal(t, ts("20:30"), slots[len(slots)-1])
		})
	}
}

func TestGenerateSlots_PastDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 9), now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_TodayIgnoresDateLocation(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	utc, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 10), now)
	require.NoError(t, err)

	for _, offset := range []int{-10, -3, 5, 14} {
		zone := time.FixedZone("zone", offset*60*60)
		got, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, time.Date(2025, 3, 10, 0, 0, 0, 0, zone), now)
		require.NoError(t, err)
		assert.Equal(t, utc, got, "offset %d", offset)
		assert.Equal(t, ts("10:00"), got[0])
	}
}

func TestGenerateSlots_ShortDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(ts("10:00"), ts("10:50"), 15, date(2025, 3, 11), now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_InvalidSchedule(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := GenerateSlots(ts("22:00"), ts("09:00"), 30, date(2025, 3, 11), now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = GenerateSlots(ts("09:00"), ts("22:00"), 0, date(2025, 3, 11), now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = GenerateSlots(types.TimeString("9am"), ts("22:00"), 30, date(2025, 3, 11), now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 13, 17, 0, 0, time.UTC)

	first, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 10), now)
	require.NoError(t, err)
	second, err := GenerateSlots(ts("09:00"), ts("22:00"), 30, date(2025, 3, 10), now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCurrentSlot(t *testing.T) {
	assert.Equal(t, ts("12:30"), CurrentSlot(time.Date(2025, 3, 10, 12, 10, 0, 0, time.UTC), 30, ts("09:00")))
	assert.Equal(t, ts("09:00"), CurrentSlot(time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC), 30, ts("09:00")))
	assert.True(t, CurrentSlot(time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC), 30, ts("09:00")).IsZero())
}
