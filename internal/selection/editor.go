package selection

import (
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// Editor is the draft of a template being authored. It is plain data so a
// dialog store can persist it between gestures; every gesture goes through
// the reducers in this package.
type Editor struct {
	TemplateID int64                    `json:"templateId,omitempty"`
	Name       string                   `json:"name"`
	Pattern    model.WeekPattern        `json:"pattern"`
	Day        model.WeekdayKey         `json:"day"`
	Current    model.AvailabilityStatus `json:"current"`
}

// NewEditor starts a draft on Monday with the available status active.
func NewEditor(name string) *Editor {
	return &Editor{
		Name:    name,
		Pattern: model.NormalizeWeekPattern(nil),
		Day:     model.Monday,
		Current: model.StatusAvailable,
	}
}

// EditTemplate starts a draft from an existing template.
func EditTemplate(t *model.AvailabilityTemplate) *Editor {
	e := NewEditor(t.Name)
	e.TemplateID = t.ID
	e.Pattern = model.NormalizeWeekPattern(t.WeekPattern)
	return e
}

// DaySlots returns the slot map of the selected day.
func (e *Editor) DaySlots() model.SlotStatuses {
	return e.Pattern[e.Day]
}

func (e *Editor) SelectDay(day model.WeekdayKey) error {
	if !day.IsValid() {
		return fmt.Errorf("%w: unknown weekday %q", model.ErrValidation, day)
	}
	e.Day = day
	return nil
}

func (e *Editor) SetStatus(status model.AvailabilityStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}
	e.Current = status
	return nil
}

// ToggleSlot toggles one slot of the selected day.
func (e *Editor) ToggleSlot(t string) error {
	if _, err := model.TimeToSlot(t); err != nil {
		return err
	}
	e.setDay(ToggleSlot(e.DaySlots(), t, e.Current))
	return nil
}

// TogglePeriod toggles a period of the selected day.
func (e *Editor) TogglePeriod(p model.Period) error {
	if _, err := model.PeriodSlots(p); err != nil {
		return err
	}
	e.setDay(TogglePeriod(e.DaySlots(), p, e.Current))
	return nil
}

func (e *Editor) SelectAll() {
	e.setDay(SelectAll(e.DaySlots(), e.Current))
}

func (e *Editor) ClearAll() {
	e.setDay(ClearAll())
}

// CopyToOtherDays copies the selected day onto the rest of the week.
func (e *Editor) CopyToOtherDays() {
	e.Pattern = CopyToOtherDays(e.Pattern, e.Day)
}

// PeriodState reports the full and partial markers of a period for the selected day.
func (e *Editor) PeriodState(p model.Period) (full, partial bool) {
	slots := e.DaySlots()
	return IsPeriodFullySelected(slots, p, e.Current), IsPeriodPartiallySelected(slots, p)
}

// Validate applies the template rules to the draft.
func (e *Editor) Validate() error {
	return model.ValidateTemplate(e.Name, e.Pattern)
}

func (e *Editor) setDay(slots model.SlotStatuses) {
	if e.Pattern == nil {
		e.Pattern = model.NormalizeWeekPattern(nil)
	}
	e.Pattern[e.Day] = slots
}
