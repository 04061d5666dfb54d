package common

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
)

// WithUser builds a HandlerContext with the driver loaded. On failure it
// answers the callback itself and handler is not called.
func WithUser(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := hc.LoadUser(); err != nil {
		h.Logger.Error("Failed to load user",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// WithSession is WithUser plus a dialog session in one of the given states.
func WithSession(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	states []state.UserState,
	handler func(*HandlerContext),
) {
	withSession(ctx, b, callback, h, (*HandlerContext).LoadSession, states, handler)
}

// WithTakenSession is WithSession for terminal steps: the session is removed
// as it is read, so a repeated callback finds nothing to act on.
func WithTakenSession(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	states []state.UserState,
	handler func(*HandlerContext),
) {
	withSession(ctx, b, callback, h, (*HandlerContext).TakeSession, states, handler)
}

func withSession(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	load func(*HandlerContext, ...state.UserState) error,
	states []state.UserState,
	handler func(*HandlerContext),
) {
	WithUser(ctx, b, callback, h, func(hc *HandlerContext) {
		if err := load(hc, states...); err != nil {
			if !errors.Is(err, ErrNoSession) {
				h.Logger.Error("Failed to load session",
					zap.Int64("telegram_id", hc.TelegramID),
					zap.Error(err))
			}
			hc.AnswerAlert(ErrorMessage(err))
			return
		}
		handler(hc)
	})
}
