// Package selection turns slot gestures into well-formed slot maps.
//
// Every function here is a pure reducer: it takes the current slot map and
// returns a new one, never mutating its input.
package selection

import "github.com/Freeeeeet/driver_availability/internal/model"

// ToggleSlot clears t when it already holds current, otherwise sets it to current.
func ToggleSlot(slots model.SlotStatuses, t string, current model.AvailabilityStatus) model.SlotStatuses {
	next := slots.Clone()
	if next[t] == current {
		delete(next, t)
		return next
	}
	next[t] = current
	return next
}

// TogglePeriod clears the whole period when every slot in it holds current,
// otherwise fills every slot of the period with current.
func TogglePeriod(slots model.SlotStatuses, p model.Period, current model.AvailabilityStatus) model.SlotStatuses {
	times, err := model.PeriodTimes(p)
	if err != nil {
		return slots.Clone()
	}

	next := slots.Clone()
	if IsPeriodFullySelected(slots, p, current) {
		for _, t := range times {
			delete(next, t)
		}
		return next
	}
	for _, t := range times {
		next[t] = current
	}
	return next
}

// SelectAllChanges returns the batch that SelectAll applies: only slots not already at current.
func SelectAllChanges(slots model.SlotStatuses, current model.AvailabilityStatus) map[string]model.AvailabilityStatus {
	changes := make(map[string]model.AvailabilityStatus)
	for _, t := range model.AllTimes() {
		if slots[t] != current {
			changes[t] = current
		}
	}
	return changes
}

// SelectAll sets every slot of the day to current.
func SelectAll(slots model.SlotStatuses, current model.AvailabilityStatus) model.SlotStatuses {
	return ApplyBatch(slots, SelectAllChanges(slots, current))
}

// ClearAll returns the empty map.
func ClearAll() model.SlotStatuses {
	return model.SlotStatuses{}
}

// ApplyBatch applies several slot changes at once. A zero status unsets the slot.
func ApplyBatch(slots model.SlotStatuses, changes map[string]model.AvailabilityStatus) model.SlotStatuses {
	next := slots.Clone()
	for t, status := range changes {
		if status == "" {
			delete(next, t)
			continue
		}
		next[t] = status
	}
	return next
}

// CopyToOtherDays replaces every weekday other than source with a copy of the source day.
func CopyToOtherDays(pattern model.WeekPattern, source model.WeekdayKey) model.WeekPattern {
	next := model.NormalizeWeekPattern(pattern)
	for _, day := range model.WeekdayKeys {
		if day == source {
			continue
		}
		next[day] = next[source].Clone()
	}
	return next
}

// IsPeriodFullySelected reports whether every slot of p holds current.
func IsPeriodFullySelected(slots model.SlotStatuses, p model.Period, current model.AvailabilityStatus) bool {
	times, err := model.PeriodTimes(p)
	if err != nil {
		return false
	}
	for _, t := range times {
		if slots[t] != current {
			return false
		}
	}
	return true
}

// IsPeriodPartiallySelected reports whether p has at least one set slot, of any
// status, and at least one unset slot.
func IsPeriodPartiallySelected(slots model.SlotStatuses, p model.Period) bool {
	times, err := model.PeriodTimes(p)
	if err != nil {
		return false
	}
	set, unset := 0, 0
	for _, t := range times {
		if _, ok := slots[t]; ok {
			set++
		} else {
			unset++
		}
	}
	return set > 0 && unset > 0
}
