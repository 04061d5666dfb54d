package handlers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/common"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/selection"
)

const templateNameMaxLength = 64

// HandleTextMessage routes free text to the dialog step the user is in.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	// Commands have their own handlers.
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	session, err := h.sessions.Get(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to load session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return
	}
	if session == nil {
		h.send(ctx, b, update.Message.Chat.ID, "Use /help to see what I can do.", nil)
		return
	}

	switch session.State {
	case state.StateTemplateName:
		h.handleTemplateNameStep(ctx, b, update, session)
	case state.StateApplyRange:
		h.handleApplyRangeStep(ctx, b, update, session)
	case state.StateEditing:
		h.send(ctx, b, update.Message.Chat.ID, "Use the buttons under the editor, or /cancel.", nil)
	default:
		h.send(ctx, b, update.Message.Chat.ID, "Use the buttons above, or /cancel.", nil)
	}
}

// handleTemplateNameStep opens the editor for a new template with the given name.
func (h *Handlers) handleTemplateNameStep(ctx context.Context, b *bot.Bot, update *models.Update, session *state.Session) {
	chatID := update.Message.Chat.ID
	name := strings.TrimSpace(update.Message.Text)
	if name == "" {
		h.sendError(ctx, b, chatID, "❌ The name must not be empty. Try again:")
		return
	}
	if utf8.RuneCountInString(name) > templateNameMaxLength {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ The name is too long (max %d characters). Try again:", templateNameMaxLength))
		return
	}

	editor := selection.NewEditor(name)
	text, kb := common.EditorScreen(editor)
	msgID := h.send(ctx, b, chatID, text, kb)
	if msgID == 0 {
		return
	}

	session.State = state.StateEditing
	session.Editor = editor
	session.MessageID = msgID
	if err := h.sessions.Save(ctx, update.Message.From.ID, session); err != nil {
		h.logger.Error("Failed to save session", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
	}
}

// handleApplyRangeStep expects "YYYY-MM-DD YYYY-MM-DD" and moves to confirmation.
func (h *Handlers) handleApplyRangeStep(ctx context.Context, b *bot.Bot, update *models.Update, session *state.Session) {
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID
	if session.Apply == nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(common.ErrNoSession))
		return
	}

	start, end, err := parseRangeText(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nSend two dates: <code>YYYY-MM-DD YYYY-MM-DD</code>")
		return
	}

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	tmpl, err := h.templates.Get(ctx, user.ID, session.Apply.TemplateID)
	if err == nil && tmpl == nil {
		err = model.ErrNotFound
	}
	if err != nil {
		h.logger.Warn("Template for apply dialog unavailable",
			zap.Int64("user_id", user.ID),
			zap.Int64("template_id", session.Apply.TemplateID),
			zap.Error(err))
		_ = h.sessions.Clear(ctx, telegramID)
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	session.Apply.StartDate = start
	session.Apply.EndDate = end
	session.State = state.StateApplyConfirm

	text, kb := common.ApplyConfirmScreen(tmpl, session.Apply)
	if msgID := h.send(ctx, b, chatID, text, kb); msgID != 0 {
		session.MessageID = msgID
	}
	if err := h.sessions.Save(ctx, telegramID, session); err != nil {
		h.logger.Error("Failed to save session", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
	}
}

// parseRangeText accepts two dates separated by spaces, a comma or "to".
func parseRangeText(text string) (string, string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	parts := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f, "to") && f != "-" {
			parts = append(parts, f)
		}
	}
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected two dates", model.ErrValidation)
	}

	if _, _, err := model.ParseDateRange(parts[0], parts[1]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}
