package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
)

const helpText = "📚 <b>Commands</b>\n\n" +
	"/templates - your weekly templates\n" +
	"/newtemplate - create a template\n" +
	"/days - upcoming availability\n" +
	"/cancel - stop the current dialog\n" +
	"/help - this message\n\n" +
	"A template describes a typical week in half-hour slots from 06:00 to 23:30. " +
	"Apply it to a date range to fill your calendar."

// HandleStart registers the driver.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.users.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName, from.LanguageCode)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text := fmt.Sprintf("👋 Hi, %s!\n\nThis bot keeps your driving availability.\n\n%s",
		html.EscapeString(user.DisplayName()), helpText)
	h.send(ctx, b, update.Message.Chat.ID, text, nil)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleTemplates shows the first page of the template list.
func (h *Handlers) HandleTemplates(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	list, err := h.templates.List(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list templates", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	text, kb := common.TemplateListScreen(list, 0)
	h.send(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleNewTemplate starts authoring; the name arrives as the next text message.
func (h *Handlers) HandleNewTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	session := &state.Session{State: state.StateTemplateName}
	if err := h.sessions.Save(ctx, user.TelegramID, session); err != nil {
		h.logger.Error("Failed to save session", zap.Int64("telegram_id", user.TelegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, common.NewTemplatePrompt, nil)
}

// HandleDays lists the upcoming day records.
func (h *Handlers) HandleDays(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	days, err := h.days.List(ctx, user.ID, "")
	if err != nil {
		h.logger.Error("Failed to list days", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}

	today := model.FormatDate(model.Today(h.now()))
	h.send(ctx, b, update.Message.Chat.ID, common.DaysScreen(days, today), nil)
}

// HandleCancel drops the current dialog.
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	session, err := h.sessions.Get(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to load session", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
	if session == nil || session.State == state.StateNone {
		h.send(ctx, b, update.Message.Chat.ID, "Nothing to cancel.", nil)
		return
	}

	if err := h.sessions.Clear(ctx, telegramID); err != nil {
		h.logger.Error("Failed to clear session", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
	h.send(ctx, b, update.Message.Chat.ID, "✖️ Cancelled.\n\n/help lists the commands.", nil)
}
