package common

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

var statusMarks = map[model.AvailabilityStatus]string{
	model.StatusAvailable:    "✅",
	model.StatusNotAvailable: "❌",
	model.StatusConditional:  "❔",
}

var statusNames = map[model.AvailabilityStatus]string{
	model.StatusAvailable:    "available",
	model.StatusNotAvailable: "not available",
	model.StatusConditional:  "conditional",
}

var weekdayNames = map[model.WeekdayKey]string{
	model.Monday:    "Monday",
	model.Tuesday:   "Tuesday",
	model.Wednesday: "Wednesday",
	model.Thursday:  "Thursday",
	model.Friday:    "Friday",
	model.Saturday:  "Saturday",
	model.Sunday:    "Sunday",
}

var periodNames = map[model.Period]string{
	model.PeriodMorning:   "Morning",
	model.PeriodAfternoon: "Afternoon",
	model.PeriodEvening:   "Evening",
}

func StatusMark(s model.AvailabilityStatus) string { return statusMarks[s] }

func WeekdayName(d model.WeekdayKey) string { return weekdayNames[d] }

// WeekdayShort is the three letter tab label.
func WeekdayShort(d model.WeekdayKey) string {
	name := weekdayNames[d]
	if len(name) < 3 {
		return string(d)
	}
	return name[:3]
}

// SlotSummary renders counts per status, e.g. "5 ✅ 2 ❔".
func SlotSummary(slots model.SlotStatuses) string {
	if len(slots) == 0 {
		return "no slots"
	}
	var parts []string
	for _, s := range model.Statuses {
		if n := slots.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, statusMarks[s]))
		}
	}
	return strings.Join(parts, " ")
}

// SlotRanges collapses consecutive slots of equal status into ranges,
// e.g. "09:00-11:00 ✅". The end of a range is exclusive.
func SlotRanges(slots model.SlotStatuses) []string {
	times := slots.Times()
	var out []string
	for i := 0; i < len(times); {
		start := times[i]
		status := slots[start]
		slot, _ := model.TimeToSlot(start)
		j := i + 1
		for j < len(times) {
			next, _ := model.TimeToSlot(times[j])
			if next != slot+(j-i) || slots[times[j]] != status {
				break
			}
			j++
		}
		out = append(out, fmt.Sprintf("%s-%s %s", start, slotEnd(slot+(j-i)-1), statusMarks[status]))
		i = j
	}
	return out
}

// slotEnd formats the end of the slot, which for 23:30 is midnight.
func slotEnd(slot int) string {
	if t, err := model.SlotToTime(slot + 1); err == nil {
		return t
	}
	return "24:00"
}

// ResultSummary renders apply counters.
func ResultSummary(r model.ApplyResult) string {
	return fmt.Sprintf("🆕 Created: %d\n✏️ Updated: %d\n⏭ Skipped: %d", r.Created, r.Updated, r.Skipped)
}

// TemplateCaption summarizes a template day by day. It is short enough for
// a photo caption.
func TemplateCaption(t *model.AvailabilityTemplate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>%s</b>\n", html.EscapeString(t.Name))
	for _, day := range model.WeekdayKeys {
		fmt.Fprintf(&sb, "\n<b>%s</b>: %s", WeekdayShort(day), SlotSummary(t.WeekPattern[day]))
	}
	return sb.String()
}
