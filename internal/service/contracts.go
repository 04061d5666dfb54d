package service

import (
	"context"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// DayMutation decides the next slot map of a day. existing is nil when no
// record exists. Returning write=false leaves the store untouched.
type DayMutation func(existing *model.DayAvailability) (next model.SlotStatuses, write bool)

// DayStore persists day records. Get returns (nil, nil) when the record is absent.
type DayStore interface {
	GetByID(ctx context.Context, userID, id int64) (*model.DayAvailability, error)
	Get(ctx context.Context, userID int64, date string) (*model.DayAvailability, error)
	List(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error)
	Create(ctx context.Context, day *model.DayAvailability) error
	Update(ctx context.Context, day *model.DayAvailability) error
	Delete(ctx context.Context, userID, id int64) (bool, error)

	// Modify runs fn and its write for one (user, date) key while holding that
	// key exclusively, so concurrent callers never decide on a stale record.
	Modify(ctx context.Context, userID int64, date string, fn DayMutation) (*model.DayAvailability, model.WriteOutcome, error)
}

// TemplateStore persists templates. Get returns (nil, nil) when the template is absent
// or owned by another user.
type TemplateStore interface {
	Get(ctx context.Context, userID, id int64) (*model.AvailabilityTemplate, error)
	List(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error)
	Create(ctx context.Context, t *model.AvailabilityTemplate) error
	Update(ctx context.Context, t *model.AvailabilityTemplate) error
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// ApplyRecorder receives per-date outcomes of template applications.
type ApplyRecorder interface {
	ObserveApply(outcome model.WriteOutcome)
	ObserveApplyFailure()
}

type nopRecorder struct{}

func (nopRecorder) ObserveApply(model.WriteOutcome) {}
func (nopRecorder) ObserveApplyFailure()            {}
