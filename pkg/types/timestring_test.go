package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "plain", input: "09:30", want: "09:30"},
		{name: "with seconds from db", input: "21:00:00", want: "21:00"},
		{name: "spaces", input: " 12:00 ", want: "12:00"},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "out of range", input: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := MustTimeString("20:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("21:00"), got)

	_, err = MustTimeString("23:45").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOutOfDay)
}

func TestTimeString_Compare(t *testing.T) {
	a := MustTimeString("09:00")
	b := MustTimeString("09:30")

	assert.True(t, a.IsBefore(b))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsAfter(a))
	assert.True(t, a.Equal(MustTimeString("09:00")))
	assert.Equal(t, 570, b.Minutes())
}

func TestTimeString_On(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := MustTimeString("12:15").On(date)
	assert.Equal(t, time.Date(2025, 3, 14, 12, 15, 0, 0, time.UTC), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("18:30:00")))
	assert.Equal(t, TimeString("18:30"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))

	v, err := MustTimeString("07:05").Value()
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", v)
}
