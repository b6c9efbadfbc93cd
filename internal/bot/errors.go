package bot

import (
	"errors"
	"strings"

	"signalbot/internal/database"
	"signalbot/internal/i18n"
	"signalbot/internal/service"
)

// phoneErrorKey ключ текста причины для ошибки проверки номера.
func phoneErrorKey(err error) string {
	switch {
	case errors.Is(err, service.ErrPhoneLength):
		return "phone_length"
	case errors.Is(err, service.ErrPhoneSpam):
		return "phone_spam"
	default:
		return "phone_format"
	}
}

func (b *Bot) getErrorMessage(lang string, err error) string {
	if err == nil {
		return i18n.T(lang, "error")
	}

	if errors.Is(err, service.ErrPhoneFormat) || errors.Is(err, service.ErrPhoneLength) || errors.Is(err, service.ErrPhoneSpam) {
		return i18n.T(lang, "phone_invalid", i18n.Params{"reason": i18n.T(lang, phoneErrorKey(err))})
	}

	if errors.Is(err, database.ErrPhoneTaken) {
		return i18n.T(lang, "duplicate_phone", i18n.Params{"support": b.supportUsername()})
	}

	return i18n.T(lang, "error")
}

func (b *Bot) supportUsername() string {
	return strings.TrimPrefix(b.config.Telegram.SupportUsername, "@")
}
