package templates

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
)

// replaceMessage edits the callback message in place. Photo cards have no
// text to edit, so they are replaced by a new message.
func replaceMessage(hc *common.HandlerContext, text string, kb *models.InlineKeyboardMarkup) {
	if hc.Message != nil && len(hc.Message.Photo) == 0 {
		if err := hc.EditMessage(text, kb); err == nil {
			return
		}
	}
	_ = hc.DeleteMessage()
	if _, err := hc.SendMessage(text, kb); err != nil {
		hc.Handler.Logger.Error("Failed to send message", zap.Error(err))
	}
}

// loadTemplate reads the id at the end of the callback data and fetches the template.
func loadTemplate(hc *common.HandlerContext) (*model.AvailabilityTemplate, error) {
	id, err := common.ParseIDFromCallback(hc.Callback.Data)
	if err != nil {
		return nil, err
	}
	return hc.Handler.Templates.Get(hc.Ctx, hc.User.ID, id)
}

func showList(hc *common.HandlerContext, page int) {
	list, err := hc.Handler.Templates.List(hc.Ctx, hc.User.ID)
	if err != nil {
		hc.Handler.Logger.Error("Failed to list templates",
			zap.Int64("user_id", hc.User.ID),
			zap.Error(err))
		hc.AnswerAlert(common.ErrorMessage(err))
		return
	}

	text, kb := common.TemplateListScreen(list, page)
	replaceMessage(hc, text, kb)
	hc.Answer("")
}

func HandleList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		showList(hc, 0)
	})
}

func HandlePage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		arg, err := common.CallbackArg(callback.Data, common.TemplatePage)
		if err != nil {
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}
		page, err := strconv.Atoi(arg)
		if err != nil {
			hc.AnswerAlert(common.ErrorMessage(common.ErrInvalidFormat))
			return
		}
		showList(hc, page)
	})
}

// HandleNew starts the name step of template authoring.
func HandleNew(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.Session = &state.Session{State: state.StateTemplateName}
		if err := hc.SaveSession(); err != nil {
			h.Logger.Error("Failed to save session", zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}
		replaceMessage(hc, common.NewTemplatePrompt, nil)
		hc.Answer("")
	})
}

func HandleView(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		tmpl, err := loadTemplate(hc)
		if err != nil || tmpl == nil {
			if err == nil {
				err = model.ErrNotFound
			}
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		hc.Answer("")
		_ = hc.DeleteMessage()
		common.SendTemplateCard(hc, tmpl)
	})
}

// HandleEdit opens the editor on an existing template.
func HandleEdit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		tmpl, err := loadTemplate(hc)
		if err != nil || tmpl == nil {
			if err == nil {
				err = model.ErrNotFound
			}
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		e := selection.EditTemplate(tmpl)
		_ = hc.DeleteMessage()
		text, kb := common.EditorScreen(e)
		msgID, err := hc.SendMessage(text, kb)
		if err != nil {
			h.Logger.Error("Failed to send editor", zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		hc.Session = &state.Session{State: state.StateEditing, Editor: e, MessageID: msgID}
		if err := hc.SaveSession(); err != nil {
			h.Logger.Error("Failed to save session", zap.Error(err))
		}
		hc.Answer("")
	})
}

func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		tmpl, err := loadTemplate(hc)
		if err != nil || tmpl == nil {
			if err == nil {
				err = model.ErrNotFound
			}
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		text, kb := common.DeleteConfirmScreen(tmpl)
		replaceMessage(hc, text, kb)
		hc.Answer("")
	})
}

func HandleDeleteConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := common.ParseIDFromCallback(callback.Data)
		if err != nil {
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		if err := h.Templates.Delete(ctx, hc.User.ID, id); err != nil {
			h.Logger.Warn("Failed to delete template",
				zap.Int64("user_id", hc.User.ID),
				zap.Int64("template_id", id),
				zap.Error(err))
			hc.AnswerAlert(common.ErrorMessage(err))
			return
		}

		hc.Answer("🗑 Deleted")
		showList(hc, 0)
	})
}
