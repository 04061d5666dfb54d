package templates

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

// HandleApply opens the apply dialog; the date range arrives as a text message.
func HandleApply(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		tmpl, err := loadTemplate(hc)
		if err != nil || tmpl == nil {
			if err == nil {
				err = model.ErrNotFound
			}
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		hc.Session = &state.Session{
			State: state.StateApplyRange,
			Apply: &state.ApplyDraft{TemplateID: tmpl.ID},
		}
		if err := hc.SaveSession(); err != nil {
			h.Logger.Error("Failed to save session", zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		text, kb := common.ApplyRangePrompt(tmpl)
		if _, err := hc.SendMessage(text, kb); err != nil {
			h.Logger.Error("Failed to send apply prompt", zap.Error(err))
		}
		hc.Answer("")
	})
}

func HandleApplyOverwrite(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithSession(ctx, b, callback, h, []state.UserState{state.StateApplyConfirm}, func(hc *common.HandlerContext) {
		draft := hc.Session.Apply
		if draft == nil {
			hc.AnswerAlert(common.ErrorMessage(common.ErrNoSession))
			return
		}

		tmpl, err := h.Templates.Get(ctx, hc.User.ID, draft.TemplateID)
		if err != nil || tmpl == nil {
			if err == nil {
				err = model.ErrNotFound
			}
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		draft.Overwrite = !draft.Overwrite
		if err := hc.SaveSession(); err != nil {
			h.Logger.Error("Failed to save session", zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		text, kb := common.ApplyConfirmScreen(tmpl, draft)
		if err := hc.EditMessage(text, kb); err != nil {
			h.Logger.Error("Failed to redraw apply dialog", zap.Error(err))
		}
		hc.Answer("")
	})
}

// HandleApplyConfirm runs the application and reports the counters. A partial
// failure reports the failing date and what was already written.
func HandleApplyConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	// The session is taken, not read, so a double tap cannot start a second run.
	common.WithTakenSession(ctx, b, callback, h, []state.UserState{state.StateApplyConfirm}, func(hc *common.HandlerContext) {
		draft := hc.Session.Apply
		if draft == nil {
			hc.AnswerAlert(common.ErrorMessage(common.ErrNoSession))
			return
		}
		hc.Answer("⏳ Applying…")

		result, err := h.Applier.Apply(ctx, service.ApplyRequest{
			UserID:     hc.User.ID,
			TemplateID: draft.TemplateID,
			StartDate:  draft.StartDate,
			EndDate:    draft.EndDate,
			Overwrite:  draft.Overwrite,
		})
		if err != nil {
			h.Logger.Warn("Template apply from bot failed",
				zap.Int64("user_id", hc.User.ID),
				zap.Int64("template_id", draft.TemplateID),
				zap.Error(err))
			_ = hc.EditMessage(common.ApplyFailureMessage(result, err), nil)
			return
		}

		text := fmt.Sprintf("✅ Template applied\n\n%s to %s\n\n%s\n\nSee /days for the result.",
			html.EscapeString(draft.StartDate), html.EscapeString(draft.EndDate), common.ResultSummary(result))
		if err := hc.EditMessage(text, nil); err != nil {
			h.Logger.Error("Failed to report apply result", zap.Error(err))
		}
	})
}

func HandleApplyCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := hc.ClearSession(); err != nil {
			h.Logger.Error("Failed to clear session", zap.Error(err))
		}
		if err := hc.EditMessage("✖️ Cancelled.", nil); err != nil {
			h.Logger.Error("Failed to edit message", zap.Error(err))
		}
		hc.Answer("")
	})
}
