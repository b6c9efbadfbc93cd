package bot

import (
	"context"
	"fmt"
	"strings"

	"signalbot/internal/i18n"
	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// userLanguage язык пользователя из БД, для неизвестных - язык по умолчанию.
func (b *Bot) userLanguage(ctx context.Context, userID int64) string {
	user, err := b.userService.GetUser(ctx, userID)
	if err != nil || user == nil {
		return i18n.Default
	}
	return i18n.Normalize(user.Language)
}

// registerUser создаёт запись пользователя из данных Telegram и перечитывает её.
func (b *Bot) registerUser(ctx context.Context, from *tgbotapi.User) *models.User {
	if err := b.userService.SaveUser(ctx, &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", from.ID).Msg("Failed to save user")
		return nil
	}

	user, err := b.userService.GetUser(ctx, from.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", from.ID).Msg("Failed to reload user")
		return nil
	}
	return user
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendMarkdown(ctx context.Context, chatID int64, text string) (tgbotapi.Message, error) {
	msg, err := b.tgService.SendMarkdown(chatID, text)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send markdown message")
	}
	return msg, err
}

func (b *Bot) sendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard interface{}) (tgbotapi.Message, error) {
	msg, err := b.tgService.SendWithKeyboard(chatID, text, keyboard)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message with keyboard")
	}
	return msg, err
}

func (b *Bot) sendError(ctx context.Context, chatID int64, lang string, err error) {
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Request failed")
	}
	b.sendMessage(ctx, chatID, b.getErrorMessage(lang, err))
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, lang := range i18n.Languages {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(lang.Label, cbLanguagePrefix+lang.Code))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func backKeyboard(lang, label, callback string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, label), callback),
		),
	)
}

func contactKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(i18n.T(lang, "btn_share_phone")),
		),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return keyboard
}

// telegramLink ссылка на канал или пользователя по username с @ или без.
func telegramLink(username string) string {
	return "https://t.me/" + strings.TrimPrefix(strings.TrimSpace(username), "@")
}

// pocketOptionLink подставляет id пользователя в партнёрскую ссылку.
func (b *Bot) pocketOptionLink(userID int64) string {
	return strings.ReplaceAll(b.config.Bot.PocketOptionLink, "{user_id}", fmt.Sprint(userID))
}

func escapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
