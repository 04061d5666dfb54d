package common

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
}

// AnswerCallbackAlert answers with a popup instead of a toast.
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback returns the message a button belongs to, or nil when
// it is no longer accessible.
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseIDFromCallback reads the trailing id of data such as "tpl:view:12".
func ParseIDFromCallback(data string) (int64, error) {
	i := strings.LastIndex(data, ":")
	if i < 0 {
		return 0, ErrInvalidFormat
	}
	id, err := strconv.ParseInt(data[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidFormat
	}
	return id, nil
}

// CallbackArg returns what follows prefix in data. Slot callbacks carry an
// "HH:MM" argument, so only the prefix is cut.
func CallbackArg(data, prefix string) (string, error) {
	if !strings.HasPrefix(data, prefix) || len(data) == len(prefix) {
		return "", ErrInvalidFormat
	}
	return data[len(prefix):], nil
}

// IsMessageNotModifiedError reports Telegram's rejection of an edit that
// changes nothing.
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
