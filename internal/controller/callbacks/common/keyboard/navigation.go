package keyboard

import "github.com/go-telegram/bot/models"

func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Back", callbackData)
}

func CancelButton(callbackData string) models.InlineKeyboardButton {
	return Button("✖️ Cancel", callbackData)
}

func ConfirmButton(callbackData string) models.InlineKeyboardButton {
	return Button("✅ Confirm", callbackData)
}

// YesNoRow returns a single Yes/No row.
func YesNoRow(yesCallback, noCallback string) []models.InlineKeyboardButton {
	return []models.InlineKeyboardButton{
		Button("✅ Yes", yesCallback),
		Button("❌ No", noCallback),
	}
}

func (b *Builder) AddBackButton(callbackData string) *Builder {
	return b.Row(BackButton(callbackData))
}
