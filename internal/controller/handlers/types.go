package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
)

// UserRegistrar registers drivers on /start and looks them up afterwards.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// DayLister feeds /days.
type DayLister interface {
	List(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error)
}

// Handlers holds the dependencies of command and text handlers.
type Handlers struct {
	users     UserRegistrar
	templates callbacktypes.Templates
	days      DayLister
	sessions  state.Store
	logger    *zap.Logger
	now       func() time.Time
}

func NewHandlers(
	users UserRegistrar,
	templates callbacktypes.Templates,
	days DayLister,
	sessions state.Store,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		users:     users,
		templates: templates,
		days:      days,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}
