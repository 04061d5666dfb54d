package callbacks

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
)

// Handler wraps callbacktypes.Handler with the bot entry point.
type Handler struct {
	*callbacktypes.Handler
}

func NewHandler(
	users callbacktypes.Users,
	templates callbacktypes.Templates,
	applier callbacktypes.Applier,
	sessions state.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{Handler: &callbacktypes.Handler{
		Users:     users,
		Templates: templates,
		Applier:   applier,
		Sessions:  sessions,
		Logger:    logger,
	}}
}

// HandleCallbackQuery is registered for every callback query.
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h.Handler)
}
