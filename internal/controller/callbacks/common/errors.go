package common

import (
	"errors"
	"fmt"
	"html"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrNoSession     = errors.New("no active dialog")
)

// ErrorMessage returns the text shown to the driver for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ You are not registered yet. Send /start"
	case errors.Is(err, ErrNoMessage):
		return "❌ Could not process the message"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Invalid button data"
	case errors.Is(err, ErrNoSession):
		return "⌛ This dialog has expired. Start again from /templates"
	case errors.Is(err, model.ErrPastDate):
		return "❌ The date is in the past"
	case errors.Is(err, model.ErrInvalidRange):
		return "❌ The start date must not be after the end date"
	case errors.Is(err, model.ErrValidation):
		return "❌ " + validationText(err)
	case errors.Is(err, model.ErrNotFound):
		return "❌ Template not found"
	default:
		return "❌ Something went wrong. Try again later"
	}
}

// ApplyFailureMessage describes an application that stopped part way.
func ApplyFailureMessage(result model.ApplyResult, err error) string {
	text := ErrorMessage(err)
	if date, ok := model.FailedDate(err); ok {
		text = fmt.Sprintf("%s\n\nStopped at %s.", text, date)
	}
	if result.Total() > 0 {
		text += "\n\nAlready processed:\n" + ResultSummary(result)
	}
	return text
}

func validationText(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidTimeFormat), errors.Is(err, model.ErrInvalidSlot):
		return "Invalid time slot"
	default:
		return "Invalid input: " + html.EscapeString(err.Error())
	}
}
