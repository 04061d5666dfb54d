package common

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/driver_availability/internal/controller/render"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
)

const (
	slotsPerRow       = 4
	templatesPerPage  = 8
	upcomingDaysLimit = 14
	maxMessageChars   = 3500
)

// EditorScreen renders the template editor for the selected day.
func EditorScreen(e *selection.Editor) (string, *models.InlineKeyboardMarkup) {
	day := e.DaySlots()

	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 <b>%s</b>\n\n", html.EscapeString(e.Name))
	fmt.Fprintf(&sb, "Day: <b>%s</b> (%s)\n", WeekdayName(e.Day), SlotSummary(day))
	fmt.Fprintf(&sb, "Marking as: %s %s\n\n", statusMarks[e.Current], statusNames[e.Current])
	sb.WriteString("Tap a slot to toggle it, or a period to toggle all of its slots.")

	kb := keyboard.NewBuilder()

	tabs := make([]models.InlineKeyboardButton, 0, len(model.WeekdayKeys))
	for _, d := range model.WeekdayKeys {
		label := WeekdayShort(d)
		if d == e.Day {
			label = "• " + label
		} else if len(e.Pattern[d]) > 0 {
			label += "*"
		}
		tabs = append(tabs, keyboard.Button(label, EditorDay+string(d)))
	}
	kb.Grid(4, tabs...)

	statuses := make([]models.InlineKeyboardButton, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		label := statusMarks[s] + " " + statusNames[s]
		if s == e.Current {
			label = "● " + label
		}
		statuses = append(statuses, keyboard.Button(label, EditorStatus+string(s)))
	}
	kb.Row(statuses...)

	for _, p := range model.Periods {
		full, partial := e.PeriodState(p)
		marker := "○"
		switch {
		case full:
			marker = "●"
		case partial:
			marker = "◐"
		}
		kb.Row(keyboard.Button(fmt.Sprintf("%s %s", marker, periodNames[p]), EditorPeriod+string(p)))

		times, _ := model.PeriodTimes(p)
		buttons := make([]models.InlineKeyboardButton, 0, len(times))
		for _, t := range times {
			label := t
			if status, ok := day[t]; ok {
				label = statusMarks[status] + " " + t
			}
			buttons = append(buttons, keyboard.Button(label, EditorSlot+t))
		}
		kb.Grid(slotsPerRow, buttons...)
	}

	kb.Row(
		keyboard.Button("☑️ Select all", EditorAll),
		keyboard.Button("🧹 Clear all", EditorClear),
	)
	kb.Row(keyboard.Button("📑 Copy to other days", EditorCopy))
	kb.Row(
		keyboard.Button("💾 Save", EditorSave),
		keyboard.CancelButton(EditorCancel),
	)
	return sb.String(), kb.Build()
}

// TemplateListScreen renders one page of the driver's templates.
func TemplateListScreen(templates []*model.AvailabilityTemplate, page int) (string, *models.InlineKeyboardMarkup) {
	kb := keyboard.NewBuilder()

	if len(templates) == 0 {
		kb.Row(keyboard.Button("➕ New template", TemplateNew))
		return "You have no templates yet.\n\nA template is a weekly pattern of time slots you can apply to any date range.", kb.Build()
	}

	totalPages := (len(templates) + templatesPerPage - 1) / templatesPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * templatesPerPage
	end := start + templatesPerPage
	if end > len(templates) {
		end = len(templates)
	}

	for _, t := range templates[start:end] {
		label := fmt.Sprintf("📋 %s (%d)", t.Name, t.WeekPattern.SlotCount())
		kb.Row(keyboard.Button(label, fmt.Sprintf("%s%d", TemplateView, t.ID)))
	}
	kb.AddPagination(TemplatePage, page, totalPages)
	kb.Row(keyboard.Button("➕ New template", TemplateNew))

	return fmt.Sprintf("📚 <b>Your templates</b> (%d)", len(templates)), kb.Build()
}

func TemplateCardKeyboard(t *model.AvailabilityTemplate) *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(
			keyboard.Button("📅 Apply", fmt.Sprintf("%s%d", TemplateApply, t.ID)),
			keyboard.Button("✏️ Edit", fmt.Sprintf("%s%d", TemplateEdit, t.ID)),
		).
		Row(keyboard.Button("🗑 Delete", fmt.Sprintf("%s%d", TemplateDelete, t.ID))).
		AddBackButton(TemplateList).
		Build()
}

func DeleteConfirmScreen(t *model.AvailabilityTemplate) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("Delete template <b>%s</b>?\n\nDays already filled from it are kept.", html.EscapeString(t.Name))
	kb := keyboard.NewBuilder().
		Row(keyboard.YesNoRow(fmt.Sprintf("%s%d", TemplateDeleteConfirm, t.ID), TemplateList)...).
		Build()
	return text, kb
}

// ApplyRangePrompt asks for the date range as text.
func ApplyRangePrompt(t *model.AvailabilityTemplate) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("📅 Apply <b>%s</b>\n\n"+
		"Send the date range as two dates:\n<code>YYYY-MM-DD YYYY-MM-DD</code>\n\n"+
		"Example: <code>2025-01-06 2025-01-19</code>", html.EscapeString(t.Name))
	return text, keyboard.NewBuilder().Row(keyboard.CancelButton(ApplyCancel)).Build()
}

func ApplyConfirmScreen(t *model.AvailabilityTemplate, draft *state.ApplyDraft) (string, *models.InlineKeyboardMarkup) {
	mode := "merge: existing slots are kept, missing ones are added"
	toggle := "🔁 Switch to overwrite"
	if draft.Overwrite {
		mode = "overwrite: existing days are replaced"
		toggle = "🔀 Switch to merge"
	}

	text := fmt.Sprintf("📅 Apply <b>%s</b>\n\nFrom: %s\nTo: %s\nMode: %s",
		html.EscapeString(t.Name), draft.StartDate, draft.EndDate, mode)
	kb := keyboard.NewBuilder().
		Row(keyboard.Button(toggle, ApplyOverwrite)).
		Row(keyboard.ConfirmButton(ApplyConfirm), keyboard.CancelButton(ApplyCancel)).
		Build()
	return text, kb
}

// DaysScreen lists upcoming day records.
func DaysScreen(days []*model.DayAvailability, today string) string {
	var sb strings.Builder
	sb.WriteString("🗓 <b>Upcoming availability</b>\n")

	shown := 0
	for _, d := range days {
		if d.Date < today || len(d.SlotStatuses) == 0 {
			continue
		}
		if shown == upcomingDaysLimit || sb.Len() > maxMessageChars {
			sb.WriteString("\n…")
			break
		}
		fmt.Fprintf(&sb, "\n<b>%s</b>: %s", d.Date, strings.Join(SlotRanges(d.SlotStatuses), ", "))
		shown++
	}
	if shown == 0 {
		sb.WriteString("\nNothing scheduled. Apply a template from /templates.")
	}
	return sb.String()
}

// SendTemplateCard posts the week preview with the template actions. If the
// image cannot be drawn the caption is sent as text.
func SendTemplateCard(hc *HandlerContext, t *model.AvailabilityTemplate) {
	caption := TemplateCaption(t)
	kb := TemplateCardKeyboard(t)

	image, err := render.WeekImage(t.Name, t.WeekPattern)
	if err == nil {
		err = hc.SendPhoto(image, caption, kb)
	}
	if err == nil {
		return
	}

	hc.Handler.Logger.Warn("Failed to send template preview",
		zap.Int64("template_id", t.ID),
		zap.Error(err))
	if _, err := hc.SendMessage(caption, kb); err != nil {
		hc.Handler.Logger.Error("Failed to send template card", zap.Error(err))
	}
}
