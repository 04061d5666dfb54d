package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MigrateLegacy converts the old record shape, a list of times sharing one
// status, into a slot map. An empty status means available.
func MigrateLegacy(timeSlots []string, status AvailabilityStatus) (SlotStatuses, error) {
	if status == "" {
		status = StatusAvailable
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown legacy status %q", ErrValidation, status)
	}

	out := make(SlotStatuses, len(timeSlots))
	for _, t := range timeSlots {
		if _, err := TimeToSlot(t); err != nil {
			return nil, fmt.Errorf("legacy time slot: %w", err)
		}
		out[t] = status
	}
	return out, nil
}

// DayPayload is the wire body of a day record write. It accepts both the
// canonical slotStatuses map and the legacy timeSlots/availability pair.
type DayPayload struct {
	UserID       int64              `json:"userId"`
	Date         string             `json:"date,omitempty"`
	SlotStatuses SlotStatuses       `json:"slotStatuses,omitempty"`
	TimeSlots    []string           `json:"timeSlots,omitempty"`
	Availability AvailabilityStatus `json:"availability,omitempty"`
}

// Slots returns the canonical slot map, migrating the legacy fields when the
// map is absent. The second value is false when the payload carries neither.
func (p DayPayload) Slots() (SlotStatuses, bool, error) {
	if p.SlotStatuses != nil {
		if err := p.SlotStatuses.Validate(); err != nil {
			return nil, true, err
		}
		return p.SlotStatuses.Clone(), true, nil
	}
	if p.TimeSlots != nil {
		slots, err := MigrateLegacy(p.TimeSlots, p.Availability)
		return slots, true, err
	}
	return nil, false, nil
}

type dayAvailabilityWire struct {
	ID           int64              `json:"id"`
	UserID       int64              `json:"userId"`
	Date         string             `json:"date"`
	SlotStatuses SlotStatuses       `json:"slotStatuses"`
	TimeSlots    []string           `json:"timeSlots"`
	Availability AvailabilityStatus `json:"availability"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// UnmarshalJSON decodes a record in either shape and keeps only slotStatuses.
func (d *DayAvailability) UnmarshalJSON(data []byte) error {
	var w dayAvailabilityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	slots, _, err := DayPayload{
		SlotStatuses: w.SlotStatuses,
		TimeSlots:    w.TimeSlots,
		Availability: w.Availability,
	}.Slots()
	if err != nil {
		return err
	}
	if slots == nil {
		slots = SlotStatuses{}
	}

	*d = DayAvailability{
		ID:           w.ID,
		UserID:       w.UserID,
		Date:         w.Date,
		SlotStatuses: slots,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
	return nil
}
