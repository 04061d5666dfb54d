package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeekdayKey identifies a day of a recurring week.
type WeekdayKey string

const (
	Monday    WeekdayKey = "mon"
	Tuesday   WeekdayKey = "tue"
	Wednesday WeekdayKey = "wed"
	Thursday  WeekdayKey = "thu"
	Friday    WeekdayKey = "fri"
	Saturday  WeekdayKey = "sat"
	Sunday    WeekdayKey = "sun"
)

// WeekdayKeys lists the week Monday first.
var WeekdayKeys = []WeekdayKey{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (k WeekdayKey) IsValid() bool {
	switch k {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// WeekdayOf maps a date to its weekday key.
func WeekdayOf(t time.Time) WeekdayKey {
	// time.Weekday starts at Sunday = 0
	idx := (int(t.Weekday()) + 6) % 7
	return WeekdayKeys[idx]
}

// WeekPattern holds a slot map per weekday. After normalization all seven keys are present.
type WeekPattern map[WeekdayKey]SlotStatuses

// NormalizeWeekPattern returns a copy of partial with every weekday present.
// Unknown keys are dropped.
func NormalizeWeekPattern(partial WeekPattern) WeekPattern {
	out := make(WeekPattern, len(WeekdayKeys))
	for _, day := range WeekdayKeys {
		out[day] = partial[day].Clone()
	}
	return out
}

// IsEmpty reports whether no weekday defines a slot.
func (p WeekPattern) IsEmpty() bool {
	for _, slots := range p {
		if len(slots) > 0 {
			return false
		}
	}
	return true
}

// Validate checks weekday keys and every slot map.
func (p WeekPattern) Validate() error {
	for day, slots := range p {
		if !day.IsValid() {
			return fmt.Errorf("%w: unknown weekday %q", ErrValidation, day)
		}
		if err := slots.Validate(); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

// Clone deep-copies the pattern.
func (p WeekPattern) Clone() WeekPattern {
	out := make(WeekPattern, len(p))
	for day, slots := range p {
		out[day] = slots.Clone()
	}
	return out
}

// SlotCount returns the number of set slots across the week.
func (p WeekPattern) SlotCount() int {
	n := 0
	for _, slots := range p {
		n += len(slots)
	}
	return n
}

// UnmarshalJSON normalizes on decode so loaded patterns always carry all seven days.
func (p *WeekPattern) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw map[WeekdayKey]SlotStatuses
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for day := range raw {
		if !day.IsValid() {
			return fmt.Errorf("%w: unknown weekday %q", ErrValidation, day)
		}
	}
	*p = NormalizeWeekPattern(raw)
	return nil
}

// AvailabilityTemplate is a named weekly pattern owned by one user.
type AvailabilityTemplate struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"userId"`
	Name        string      `json:"name"`
	WeekPattern WeekPattern `json:"weekPattern"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ValidateTemplate applies the create rules: non-blank name and at least one slot.
func ValidateTemplate(name string, pattern WeekPattern) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if err := pattern.Validate(); err != nil {
		return err
	}
	if pattern.IsEmpty() {
		return fmt.Errorf("%w: template must define at least one slot", ErrValidation)
	}
	return nil
}
