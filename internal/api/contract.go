package api

import (
	"context"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

type AvailabilityService interface {
	List(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error)
	Create(ctx context.Context, userID int64, date string, slots model.SlotStatuses) (*model.DayAvailability, error)
	Update(ctx context.Context, userID, id int64, slots model.SlotStatuses) (*model.DayAvailability, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TemplateService interface {
	List(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error)
	Create(ctx context.Context, userID int64, name string, pattern model.WeekPattern) (*model.AvailabilityTemplate, error)
	Update(ctx context.Context, userID, id int64, patch service.TemplatePatch) (*model.AvailabilityTemplate, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TemplateApplier interface {
	Apply(ctx context.Context, req service.ApplyRequest) (model.ApplyResult, error)
}

// RequestObserver records finished requests; satisfied by *metrics.Metrics.
type RequestObserver interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
}

// ReadyCheck reports whether backing stores are reachable.
type ReadyCheck func(ctx context.Context) error
