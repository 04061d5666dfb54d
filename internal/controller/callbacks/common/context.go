package common

import (
	"bytes"
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
	"github.com/Freeeeeet/driver_availability/internal/model"
)

// HandlerContext bundles what every callback handler needs.
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	User       *model.User
	Session    *state.Session
	TelegramID int64
	ChatID     int64
}

func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	var chatID int64
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

func (hc *HandlerContext) LoadUser() error {
	user, err := hc.Handler.Users.GetByTelegramID(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	hc.User = user
	return nil
}

// LoadSession loads the dialog and checks it is in one of the wanted states.
func (hc *HandlerContext) LoadSession(want ...state.UserState) error {
	s, err := hc.Handler.Sessions.Get(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}
	for _, w := range want {
		if s.State == w {
			hc.Session = s
			return nil
		}
	}
	return ErrNoSession
}

// TakeSession removes the dialog from the store and keeps it on hc. Only one of
// several concurrent callers gets it; the rest see ErrNoSession.
func (hc *HandlerContext) TakeSession(want ...state.UserState) error {
	s, err := hc.Handler.Sessions.Take(hc.Ctx, hc.TelegramID, want...)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}
	hc.Session = s
	return nil
}

func (hc *HandlerContext) SaveSession() error {
	return hc.Handler.Sessions.Save(hc.Ctx, hc.TelegramID, hc.Session)
}

func (hc *HandlerContext) ClearSession() error {
	hc.Session = nil
	return hc.Handler.Sessions.Clear(hc.Ctx, hc.TelegramID)
}

func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// EditMessage replaces the text and keyboard of the callback's message.
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, &bot.EditMessageTextParams{
		ChatID:      hc.ChatID,
		MessageID:   hc.Message.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: Markup(keyboard),
	})
	if IsMessageNotModifiedError(err) {
		return nil
	}
	return err
}

func (hc *HandlerContext) DeleteMessage() error {
	if hc.Message == nil {
		return ErrNoMessage
	}
	_, err := hc.Bot.DeleteMessage(hc.Ctx, &bot.DeleteMessageParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
	})
	return err
}

// SendMessage posts a new message and returns its id.
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) (int, error) {
	msg, err := hc.Bot.SendMessage(hc.Ctx, &bot.SendMessageParams{
		ChatID:      hc.ChatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: Markup(keyboard),
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (hc *HandlerContext) SendPhoto(image []byte, caption string, keyboard *models.InlineKeyboardMarkup) error {
	_, err := hc.Bot.SendPhoto(hc.Ctx, &bot.SendPhotoParams{
		ChatID:      hc.ChatID,
		Photo:       &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(image)},
		Caption:     caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: Markup(keyboard),
	})
	return err
}

// Markup keeps a missing keyboard out of the request instead of sending null.
func Markup(keyboard *models.InlineKeyboardMarkup) models.ReplyMarkup {
	if keyboard == nil {
		return nil
	}
	return keyboard
}
