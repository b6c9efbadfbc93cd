package bot

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// updateSource отправитель обновления и чат для ответа.
type updateSource struct {
	userID int64
	chatID int64
}

func sourceOf(update tgbotapi.Update) updateSource {
	var src updateSource
	switch {
	case update.CallbackQuery != nil:
		if update.CallbackQuery.From != nil {
			src.userID = update.CallbackQuery.From.ID
		}
		if msg := update.CallbackQuery.Message; msg != nil && msg.Chat != nil {
			src.chatID = msg.Chat.ID
		}
	case update.Message != nil:
		if update.Message.From != nil {
			src.userID = update.Message.From.ID
		}
		if update.Message.Chat != nil {
			src.chatID = update.Message.Chat.ID
		}
	}
	return src
}

// withRecovery паника в обработчике не роняет цикл обновлений, пользователь получает общее сообщение об ошибке.
func (b *Bot) withRecovery(ctx context.Context, src updateSource, handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			zerolog.Ctx(ctx).Error().
				Interface("panic", r).
				Int64("user_id", src.userID).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic in update handler")
			b.notifyFailure(ctx, src)
		}
	}()
	handler()
}

func (b *Bot) notifyFailure(ctx context.Context, src updateSource) {
	if src.chatID == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Interface("panic", r).Msg("Failed to report error to user")
		}
	}()
	b.sendError(ctx, src.chatID, b.userLanguage(ctx, src.userID), nil)
}

// trackActivity обновляет last_activity в фоне, чтобы не тормозить цикл обновлений.
func (b *Bot) trackActivity(userID int64) {
	if userID == 0 {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.userService.UpdateUserActivity(ctx, userID); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to update user activity")
		}
	}()
}
