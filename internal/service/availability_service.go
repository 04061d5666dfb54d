package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
	"go.uber.org/zap"
)

// AvailabilityService manages day records edited directly by the driver.
type AvailabilityService struct {
	days   DayStore
	now    func() time.Time
	logger *zap.Logger
}

func NewAvailabilityService(days DayStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		days:   days,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the clock used for the past-date check.
func (s *AvailabilityService) WithClock(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// List returns the user's records ordered by date. A non-empty date filters to that day.
func (s *AvailabilityService) List(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error) {
	if date != "" {
		if _, err := model.ParseDate(date); err != nil {
			return nil, err
		}
	}

	days, err := s.days.List(ctx, userID, date)
	if err != nil {
		return nil, storageError(ctx, "list availabilities", err)
	}
	return days, nil
}

// Get returns one record of the user or ErrNotFound.
func (s *AvailabilityService) Get(ctx context.Context, userID, id int64) (*model.DayAvailability, error) {
	day, err := s.days.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storageError(ctx, "get availability", err)
	}
	if day == nil {
		return nil, fmt.Errorf("%w: availability %d", model.ErrNotFound, id)
	}
	return day, nil
}

// Create stores the first record of a (user, date) pair. New records cannot be
// placed before today and must hold at least one slot.
func (s *AvailabilityService) Create(ctx context.Context, userID int64, date string, slots model.SlotStatuses) (*model.DayAvailability, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if d.Before(model.Today(s.now())) {
		return nil, fmt.Errorf("%w: %s", model.ErrPastDate, date)
	}
	if err := validateDaySlots(slots); err != nil {
		return nil, err
	}

	existing, err := s.days.Get(ctx, userID, date)
	if err != nil {
		return nil, storageError(ctx, "check existing availability", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: availability for %s already exists (id %d)", model.ErrValidation, date, existing.ID)
	}

	day := &model.DayAvailability{
		UserID:       userID,
		Date:         date,
		SlotStatuses: slots.Clone(),
	}
	if err := s.days.Create(ctx, day); err != nil {
		return nil, storageError(ctx, "create availability", err)
	}

	s.logger.Info("Availability created",
		zap.Int64("user_id", userID),
		zap.String("date", date),
		zap.Int("slots", len(slots)),
	)
	return day, nil
}

// Update replaces the slot map of an existing record.
func (s *AvailabilityService) Update(ctx context.Context, userID, id int64, slots model.SlotStatuses) (*model.DayAvailability, error) {
	if err := validateDaySlots(slots); err != nil {
		return nil, err
	}

	day, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	day.SlotStatuses = slots.Clone()
	if err := s.days.Update(ctx, day); err != nil {
		return nil, storageError(ctx, "update availability", err)
	}

	s.logger.Info("Availability updated",
		zap.Int64("user_id", userID),
		zap.Int64("availability_id", id),
		zap.String("date", day.Date),
	)
	return day, nil
}

// Delete removes a record. Records are never removed implicitly.
func (s *AvailabilityService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.days.Delete(ctx, userID, id)
	if err != nil {
		return storageError(ctx, "delete availability", err)
	}
	if !deleted {
		return fmt.Errorf("%w: availability %d", model.ErrNotFound, id)
	}

	s.logger.Info("Availability deleted",
		zap.Int64("user_id", userID),
		zap.Int64("availability_id", id),
	)
	return nil
}

// ApplyBatch edits several slots of one date at once, creating the record if
// needed. It shares the per-date lock with template application.
func (s *AvailabilityService) ApplyBatch(ctx context.Context, userID int64, date string, changes map[string]model.AvailabilityStatus) (*model.DayAvailability, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}
	for t, status := range changes {
		if _, err := model.TimeToSlot(t); err != nil {
			return nil, err
		}
		if status != "" && !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q at %s", model.ErrValidation, status, t)
		}
	}

	day, outcome, err := s.days.Modify(ctx, userID, date, func(existing *model.DayAvailability) (model.SlotStatuses, bool) {
		var current model.SlotStatuses
		if existing != nil {
			current = existing.SlotStatuses
		}
		next := selection.ApplyBatch(current, changes)
		if len(next) == 0 || (existing != nil && next.Equal(existing.SlotStatuses)) {
			return nil, false
		}
		return next, true
	})
	if err != nil {
		return nil, &model.DateError{Date: date, Err: storageError(ctx, "modify availability", err)}
	}

	s.logger.Debug("Availability batch applied",
		zap.Int64("user_id", userID),
		zap.String("date", date),
		zap.Int("changes", len(changes)),
		zap.Stringer("outcome", outcome),
	)
	return day, nil
}

func validateDaySlots(slots model.SlotStatuses) error {
	if len(slots) == 0 {
		return fmt.Errorf("%w: select at least one time slot", model.ErrValidation)
	}
	return slots.Validate()
}
