package callbacktypes

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

// Users resolves Telegram accounts to drivers.
type Users interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

type Templates interface {
	Get(ctx context.Context, userID, id int64) (*model.AvailabilityTemplate, error)
	List(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error)
	Create(ctx context.Context, userID int64, name string, pattern model.WeekPattern) (*model.AvailabilityTemplate, error)
	Update(ctx context.Context, userID, id int64, patch service.TemplatePatch) (*model.AvailabilityTemplate, error)
	Delete(ctx context.Context, userID, id int64) error
}

type Applier interface {
	Apply(ctx context.Context, req service.ApplyRequest) (model.ApplyResult, error)
}

// Handler holds the dependencies shared by all callback handlers.
type Handler struct {
	Users     Users
	Templates Templates
	Applier   Applier
	Sessions  state.Store
	Logger    *zap.Logger
}
