package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotToTime(t *testing.T) {
	tests := []struct {
		slot int
		want string
	}{
		{12, "06:00"},
		{13, "06:30"},
		{18, "09:00"},
		{24, "12:00"},
		{47, "23:30"},
	}
	for _, tt := range tests {
		got, err := SlotToTime(tt.slot)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSlotToTimeRejectsOutOfRange(t *testing.T) {
	for _, slot := range []int{-1, 0, 11, 48, 100} {
		_, err := SlotToTime(slot)
		assert.ErrorIs(t, err, ErrInvalidSlot, "slot %d", slot)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestTimeToSlotErrors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"9:00", ErrInvalidTimeFormat},
		{"09:00:00", ErrInvalidTimeFormat},
		{"ab:cd", ErrInvalidTimeFormat},
		{"", ErrInvalidTimeFormat},
		{"09:15", ErrInvalidSlot},
		{"09:60", ErrInvalidSlot},
		{"05:30", ErrInvalidSlot},
		{"00:00", ErrInvalidSlot},
		{"24:00", ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := TimeToSlot(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSlotRoundTrip(t *testing.T) {
	for _, s := range AllSlots() {
		tm, err := SlotToTime(s)
		require.NoError(t, err)
		back, err := TimeToSlot(tm)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
	for _, tm := range AllTimes() {
		s, err := TimeToSlot(tm)
		require.NoError(t, err)
		back, err := SlotToTime(s)
		require.NoError(t, err)
		assert.Equal(t, tm, back)
	}
}

func TestAllSlots(t *testing.T) {
	slots := AllSlots()
	require.Len(t, slots, 36)
	assert.Equal(t, 12, slots[0])
	assert.Equal(t, 47, slots[35])

	slots[0] = 99
	assert.Equal(t, 12, AllSlots()[0], "each call returns a fresh slice")
}

func TestPeriodSlots(t *testing.T) {
	tests := []struct {
		period      Period
		first, last string
	}{
		{PeriodMorning, "06:00", "11:30"},
		{PeriodAfternoon, "12:00", "17:30"},
		{PeriodEvening, "18:00", "23:30"},
	}
	for _, tt := range tests {
		times, err := PeriodTimes(tt.period)
		require.NoError(t, err)
		require.Len(t, times, 12)
		assert.Equal(t, tt.first, times[0])
		assert.Equal(t, tt.last, times[11])
	}

	_, err := PeriodSlots("night")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPeriodOf(t *testing.T) {
	p, ok := PeriodOf(23)
	require.True(t, ok)
	assert.Equal(t, PeriodMorning, p)

	p, ok = PeriodOf(36)
	require.True(t, ok)
	assert.Equal(t, PeriodEvening, p)

	_, ok = PeriodOf(48)
	assert.False(t, ok)
}
