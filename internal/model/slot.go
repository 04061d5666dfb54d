package model

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	MinSlot       = 12 // 06:00
	MaxSlot       = 47 // 23:30
	SlotMinutes   = 30
	SlotsPerDay   = MaxSlot - MinSlot + 1
	timeLayoutHHM = "%02d:%02d"
)

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Period is a fixed third of the bookable day.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Periods in display order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

var periodBounds = map[Period][2]int{
	PeriodMorning:   {12, 23},
	PeriodAfternoon: {24, 35},
	PeriodEvening:   {36, 47},
}

// IsValidSlot reports whether slot is inside [MinSlot, MaxSlot].
func IsValidSlot(slot int) bool {
	return slot >= MinSlot && slot <= MaxSlot
}

// SlotToTime formats a slot index as HH:MM.
func SlotToTime(slot int) (string, error) {
	if !IsValidSlot(slot) {
		return "", fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	minutes := slot * SlotMinutes
	return fmt.Sprintf(timeLayoutHHM, minutes/60, minutes%60), nil
}

// TimeToSlot parses HH:MM into a slot index. It is the exact inverse of SlotToTime.
func TimeToSlot(t string) (int, error) {
	if !timePattern.MatchString(t) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, t)
	}

	hours, _ := strconv.Atoi(t[:2])
	minutes, _ := strconv.Atoi(t[3:])
	if minutes%SlotMinutes != 0 || minutes >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, t)
	}

	slot := (hours*60 + minutes) / SlotMinutes
	if !IsValidSlot(slot) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, t)
	}
	return slot, nil
}

// IsValidTime reports whether t is a slot-aligned time inside the bookable day.
func IsValidTime(t string) bool {
	_, err := TimeToSlot(t)
	return err == nil
}

// AllSlots returns the 36 valid slots in ascending order.
func AllSlots() []int {
	slots := make([]int, 0, SlotsPerDay)
	for s := MinSlot; s <= MaxSlot; s++ {
		slots = append(slots, s)
	}
	return slots
}

// AllTimes returns AllSlots formatted as HH:MM.
func AllTimes() []string {
	return slotsToTimes(AllSlots())
}

// PeriodSlots returns the slot range of a period.
func PeriodSlots(p Period) ([]int, error) {
	bounds, ok := periodBounds[p]
	if !ok {
		return nil, fmt.Errorf("%w: unknown period %q", ErrValidation, p)
	}
	slots := make([]int, 0, bounds[1]-bounds[0]+1)
	for s := bounds[0]; s <= bounds[1]; s++ {
		slots = append(slots, s)
	}
	return slots, nil
}

// PeriodTimes returns the slots of a period formatted as HH:MM.
func PeriodTimes(p Period) ([]string, error) {
	slots, err := PeriodSlots(p)
	if err != nil {
		return nil, err
	}
	return slotsToTimes(slots), nil
}

// PeriodOf returns the period a valid slot belongs to.
func PeriodOf(slot int) (Period, bool) {
	for _, p := range Periods {
		b := periodBounds[p]
		if slot >= b[0] && slot <= b[1] {
			return p, true
		}
	}
	return "", false
}

func slotsToTimes(slots []int) []string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		minutes := s * SlotMinutes
		times = append(times, fmt.Sprintf(timeLayoutHHM, minutes/60, minutes%60))
	}
	return times
}
