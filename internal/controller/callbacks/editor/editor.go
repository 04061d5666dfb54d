package editor

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

var editing = []state.UserState{state.StateEditing}

// gesture runs one editor reducer on the stored draft, saves it and redraws.
func gesture(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	apply func(e *selection.Editor) error,
) {
	common.WithSession(ctx, b, callback, h, editing, func(hc *common.HandlerContext) {
		e := hc.Session.Editor
		if e == nil {
			hc.AnswerAlert(common.ErrorMessage(common.ErrNoSession))
			return
		}

		if err := apply(e); err != nil {
			h.Logger.Warn("Editor gesture rejected",
				zap.String("data", callback.Data),
				zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		if err := hc.SaveSession(); err != nil {
			h.Logger.Error("Failed to save session", zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		text, kb := common.EditorScreen(e)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Error("Failed to redraw editor", zap.Error(err))
		}
		hc.Answer("")
	})
}

func HandleSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		t, err := common.CallbackArg(callback.Data, common.EditorSlot)
		if err != nil {
			return err
		}
		return e.ToggleSlot(t)
	})
}

func HandlePeriod(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		p, err := common.CallbackArg(callback.Data, common.EditorPeriod)
		if err != nil {
			return err
		}
		return e.TogglePeriod(model.Period(p))
	})
}

func HandleDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		d, err := common.CallbackArg(callback.Data, common.EditorDay)
		if err != nil {
			return err
		}
		return e.SelectDay(model.WeekdayKey(d))
	})
}

func HandleStatus(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		s, err := common.CallbackArg(callback.Data, common.EditorStatus)
		if err != nil {
			return err
		}
		return e.SetStatus(model.AvailabilityStatus(s))
	})
}

func HandleSelectAll(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		e.SelectAll()
		return nil
	})
}

func HandleClearAll(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		e.ClearAll()
		return nil
	})
}

func HandleCopy(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	gesture(ctx, b, callback, h, func(e *selection.Editor) error {
		e.CopyToOtherDays()
		return nil
	})
}

// HandleSave stores the draft as a new template or over the one being edited.
// The session is taken up front so a double tap saves once; it is put back
// when the draft cannot be saved yet.
func HandleSave(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTakenSession(ctx, b, callback, h, editing, func(hc *common.HandlerContext) {
		e := hc.Session.Editor
		if e == nil {
			hc.AnswerAlert(common.ErrorMessage(common.ErrNoSession))
			return
		}
		if err := e.Validate(); err != nil {
			restoreSession(hc, h)
			hc.AnswerAlert("❌ Select at least one slot before saving")
			return
		}

		var (
			tmpl *model.AvailabilityTemplate
			err  error
		)
		if e.TemplateID == 0 {
			tmpl, err = h.Templates.Create(ctx, hc.User.ID, e.Name, e.Pattern)
		} else {
			name := e.Name
			tmpl, err = h.Templates.Update(ctx, hc.User.ID, e.TemplateID, service.TemplatePatch{
				Name:        &name,
				WeekPattern: e.Pattern,
			})
		}
		if err != nil {
			h.Logger.Error("Failed to save template",
				zap.Int64("user_id", hc.User.ID),
				zap.Int64("template_id", e.TemplateID),
				zap.Error(err))
			restoreSession(hc, h)
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		hc.Answer("✅ Saved")
		_ = hc.DeleteMessage()
		common.SendTemplateCard(hc, tmpl)
	})
}

func restoreSession(hc *common.HandlerContext, h *callbacktypes.Handler) {
	if err := hc.SaveSession(); err != nil {
		h.Logger.Error("Failed to restore session",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
}

func HandleCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.ClearSession(); err != nil {
			h.Logger.Error("Failed to clear session", zap.Error(err))
		}
		if err := hc.EditMessage("✖️ Editing cancelled. Nothing was saved.", nil); err != nil {
			h.Logger.Error("Failed to edit message", zap.Error(err))
		}
		hc.Answer("")
	})
}
