package model

import (
	"fmt"
	"sort"
	"time"
)

// AvailabilityStatus is the state of a single slot. An absent slot is unset.
type AvailabilityStatus string

const (
	StatusAvailable    AvailabilityStatus = "available"
	StatusNotAvailable AvailabilityStatus = "not-available"
	StatusConditional  AvailabilityStatus = "conditional"
)

// Statuses in display order.
var Statuses = []AvailabilityStatus{StatusAvailable, StatusNotAvailable, StatusConditional}

func (s AvailabilityStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusNotAvailable, StatusConditional:
		return true
	}
	return false
}

// SlotStatuses maps HH:MM slot times to their status.
type SlotStatuses map[string]AvailabilityStatus

// Validate checks every key against the slot codec and every value against the status enum.
func (s SlotStatuses) Validate() error {
	for t, status := range s {
		if _, err := TimeToSlot(t); err != nil {
			return err
		}
		if !status.IsValid() {
			return fmt.Errorf("%w: unknown status %q at %s", ErrValidation, status, t)
		}
	}
	return nil
}

// Clone returns a copy that shares no storage with s. A nil map clones to an empty one.
func (s SlotStatuses) Clone() SlotStatuses {
	out := make(SlotStatuses, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same keys with the same statuses.
func (s SlotStatuses) Equal(other SlotStatuses) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Times returns the set keys in chronological order.
func (s SlotStatuses) Times() []string {
	times := make([]string, 0, len(s))
	for t := range s {
		times = append(times, t)
	}
	sort.Strings(times)
	return times
}

// Count returns how many slots carry the given status.
func (s SlotStatuses) Count(status AvailabilityStatus) int {
	n := 0
	for _, v := range s {
		if v == status {
			n++
		}
	}
	return n
}

// DayAvailability is one user's slot map for one concrete date.
type DayAvailability struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"userId"`
	Date         string       `json:"date"`
	SlotStatuses SlotStatuses `json:"slotStatuses"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// WriteOutcome describes what a store did for a single (user, date) upsert.
type WriteOutcome int

const (
	OutcomeUnchanged WriteOutcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o WriteOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// ApplyResult summarizes one template application.
type ApplyResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Total is the number of dates that had a non-empty pattern.
func (r ApplyResult) Total() int {
	return r.Created + r.Updated + r.Skipped
}
