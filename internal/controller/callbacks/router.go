package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/editor"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/templates"
)

// Route dispatches a callback query by its data.
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("telegram_id", callback.From.ID))

	switch {
	case data == common.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Template editor =====
	case strings.HasPrefix(data, common.EditorSlot):
		editor.HandleSlot(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EditorPeriod):
		editor.HandlePeriod(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EditorDay):
		editor.HandleDay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.EditorStatus):
		editor.HandleStatus(ctx, b, callback, h)
	case data == common.EditorAll:
		editor.HandleSelectAll(ctx, b, callback, h)
	case data == common.EditorClear:
		editor.HandleClearAll(ctx, b, callback, h)
	case data == common.EditorCopy:
		editor.HandleCopy(ctx, b, callback, h)
	case data == common.EditorSave:
		editor.HandleSave(ctx, b, callback, h)
	case data == common.EditorCancel:
		editor.HandleCancel(ctx, b, callback, h)

	// ===== Templates =====
	case data == common.TemplateList:
		templates.HandleList(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplatePage):
		templates.HandlePage(ctx, b, callback, h)
	case data == common.TemplateNew:
		templates.HandleNew(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplateView):
		templates.HandleView(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplateEdit):
		templates.HandleEdit(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplateApply):
		templates.HandleApply(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplateDeleteConfirm):
		templates.HandleDeleteConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.TemplateDelete):
		templates.HandleDelete(ctx, b, callback, h)

	// ===== Apply dialog =====
	case data == common.ApplyOverwrite:
		templates.HandleApplyOverwrite(ctx, b, callback, h)
	case data == common.ApplyConfirm:
		templates.HandleApplyConfirm(ctx, b, callback, h)
	case data == common.ApplyCancel:
		templates.HandleApplyCancel(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "")
	}
}
