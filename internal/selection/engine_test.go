package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

func TestToggleSlot(t *testing.T) {
	empty := model.SlotStatuses{}

	set := ToggleSlot(empty, "09:00", model.StatusAvailable)
	assert.Equal(t, model.SlotStatuses{"09:00": model.StatusAvailable}, set)
	assert.Empty(t, empty, "input must not be mutated")

	reassigned := ToggleSlot(set, "09:00", model.StatusConditional)
	assert.Equal(t, model.StatusConditional, reassigned["09:00"], "a different status converges to current")

	cleared := ToggleSlot(reassigned, "09:00", model.StatusConditional)
	assert.NotContains(t, cleared, "09:00")
}

func TestTogglePeriodFillsThenClears(t *testing.T) {
	filled := TogglePeriod(model.SlotStatuses{}, model.PeriodMorning, model.StatusAvailable)
	require.Len(t, filled, 12)
	for _, tm := range mustPeriodTimes(t, model.PeriodMorning) {
		assert.Equal(t, model.StatusAvailable, filled[tm])
	}

	cleared := TogglePeriod(filled, model.PeriodMorning, model.StatusAvailable)
	assert.Empty(t, cleared)
}

func TestTogglePeriodOverridesOtherStatuses(t *testing.T) {
	slots := model.SlotStatuses{
		"06:00": model.StatusNotAvailable,
		"12:00": model.StatusConditional,
	}

	got := TogglePeriod(slots, model.PeriodMorning, model.StatusAvailable)
	assert.Len(t, got, 13)
	assert.Equal(t, model.StatusAvailable, got["06:00"])
	assert.Equal(t, model.StatusConditional, got["12:00"], "other periods are untouched")
}

func TestSelectAllAndClearAll(t *testing.T) {
	slots := model.SlotStatuses{"06:00": model.StatusAvailable, "07:00": model.StatusConditional}

	changes := SelectAllChanges(slots, model.StatusAvailable)
	assert.Len(t, changes, 35)
	assert.NotContains(t, changes, "06:00")

	all := SelectAll(slots, model.StatusAvailable)
	assert.Len(t, all, 36)
	assert.Equal(t, 36, all.Count(model.StatusAvailable))

	assert.Empty(t, ClearAll())
}

func TestApplyBatch(t *testing.T) {
	slots := model.SlotStatuses{"06:00": model.StatusAvailable, "06:30": model.StatusAvailable}

	got := ApplyBatch(slots, map[string]model.AvailabilityStatus{
		"06:00": "",
		"07:00": model.StatusNotAvailable,
	})
	assert.Equal(t, model.SlotStatuses{"06:30": model.StatusAvailable, "07:00": model.StatusNotAvailable}, got)
	assert.Len(t, slots, 2)
}

func TestCopyToOtherDaysDoesNotAlias(t *testing.T) {
	pattern := model.NormalizeWeekPattern(model.WeekPattern{
		model.Tuesday: {"09:00": model.StatusAvailable},
		model.Friday:  {"20:00": model.StatusConditional},
	})

	got := CopyToOtherDays(pattern, model.Tuesday)
	for _, day := range model.WeekdayKeys {
		assert.Equal(t, model.SlotStatuses{"09:00": model.StatusAvailable}, got[day], "day %s", day)
	}

	got[model.Monday]["10:00"] = model.StatusAvailable
	assert.NotContains(t, got[model.Tuesday], "10:00")
	assert.NotContains(t, got[model.Wednesday], "10:00")
	assert.Equal(t, model.StatusConditional, pattern[model.Friday]["20:00"], "input pattern is unchanged")
}

func TestPeriodQueries(t *testing.T) {
	slots := model.SlotStatuses{}
	assert.False(t, IsPeriodFullySelected(slots, model.PeriodEvening, model.StatusAvailable))
	assert.False(t, IsPeriodPartiallySelected(slots, model.PeriodEvening))

	slots["18:00"] = model.StatusNotAvailable
	assert.True(t, IsPeriodPartiallySelected(slots, model.PeriodEvening), "any status counts as set")

	full := TogglePeriod(model.SlotStatuses{}, model.PeriodEvening, model.StatusConditional)
	assert.True(t, IsPeriodFullySelected(full, model.PeriodEvening, model.StatusConditional))
	assert.False(t, IsPeriodFullySelected(full, model.PeriodEvening, model.StatusAvailable))
	assert.False(t, IsPeriodPartiallySelected(full, model.PeriodEvening))
}

func TestEditorGestures(t *testing.T) {
	e := NewEditor("Weekdays")
	require.Error(t, e.Validate(), "an empty draft is invalid")

	require.NoError(t, e.TogglePeriod(model.PeriodAfternoon))
	require.NoError(t, e.SetStatus(model.StatusConditional))
	require.NoError(t, e.ToggleSlot("12:00"))

	full, partial := e.PeriodState(model.PeriodAfternoon)
	assert.False(t, full)
	assert.False(t, partial, "every afternoon slot is still set")
	assert.Equal(t, model.StatusConditional, e.DaySlots()["12:00"])

	require.NoError(t, e.SelectDay(model.Saturday))
	assert.Empty(t, e.DaySlots())
	require.NoError(t, e.SelectDay(model.Monday))
	e.CopyToOtherDays()
	assert.Len(t, e.Pattern[model.Sunday], 12)

	assert.NoError(t, e.Validate())
	assert.ErrorIs(t, e.ToggleSlot("12:15"), model.ErrInvalidSlot)
	assert.ErrorIs(t, e.SelectDay("funday"), model.ErrValidation)
	assert.ErrorIs(t, e.SetStatus("maybe"), model.ErrValidation)

	e.ClearAll()
	assert.Empty(t, e.DaySlots())
}

func mustPeriodTimes(t *testing.T, p model.Period) []string {
	t.Helper()
	times, err := model.PeriodTimes(p)
	require.NoError(t, err)
	return times
}
