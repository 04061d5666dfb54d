package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidRange      = errors.New("start date is after end date")
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage failure")
	ErrMalformedResponse = errors.New("malformed response")

	// Slot codec errors. Both are validation errors for callers matching on ErrValidation.
	ErrInvalidTimeFormat = fmt.Errorf("%w: invalid time format, expected HH:MM", ErrValidation)
	ErrInvalidSlot       = fmt.Errorf("%w: slot outside 06:00-23:30 or not on a 30 minute boundary", ErrValidation)

	ErrPastDate = fmt.Errorf("%w: date is in the past", ErrValidation)

	// ErrAlreadyExists is a second record for a (user, date) that already has one.
	ErrAlreadyExists = fmt.Errorf("%w: availability already exists", ErrValidation)
)

// DateError reports the date that was being processed when Err occurred.
type DateError struct {
	Date string
	Err  error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("date %s: %v", e.Date, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// FailedDate returns the date attached to err, if any.
func FailedDate(err error) (string, bool) {
	var de *DateError
	if errors.As(err, &de) {
		return de.Date, true
	}
	return "", false
}
