package bot

import (
	"context"

	"signalbot/internal/i18n"
	"signalbot/internal/metrics"
	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// callbackAnswer ответ на callback query. Отправляется роутером ровно один раз.
type callbackAnswer struct {
	text  string
	alert bool
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	l := zerolog.Ctx(ctx)

	l.Debug().
		Int64("user_id", userID).
		Str("username", msg.From.UserName).
		Str("text", msg.Text).
		Msg("Handling message")

	// команды обрабатываются до состояния диалога
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "admin":
			b.handleAdmin(ctx, msg)
		default:
			l.Debug().Str("command", msg.Command()).Msg("Unknown command ignored")
		}
		return
	}

	if msg.Contact != nil {
		b.handleContact(ctx, msg)
		return
	}

	switch b.stateService.CurrentStep(ctx, userID) {
	case models.StateWaitingBroadcastText:
		if b.userService.IsAdmin(userID) {
			b.handleBroadcastContent(ctx, msg)
			return
		}
	}

	b.resumeFlow(ctx, msg.Chat.ID, msg.From)
}

// resumeFlow возвращает пользователя туда, где он остановился в онбординге.
func (b *Bot) resumeFlow(ctx context.Context, chatID int64, from *tgbotapi.User) {
	user, err := b.userService.GetUser(ctx, from.ID)
	if err != nil {
		user = b.registerUser(ctx, from)
	}
	if user == nil {
		b.sendError(ctx, chatID, i18n.Default, err)
		return
	}

	switch {
	case user.HasPhone():
		b.showMainMenu(ctx, chatID, from.ID)
	case !user.LanguageSelected:
		b.showLanguageSelection(ctx, chatID)
	default:
		b.continueOnboarding(ctx, chatID, user)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	l := zerolog.Ctx(ctx)
	userID := query.From.ID

	if b.guard.CheckAndRecord(query.ID) {
		metrics.IncDuplicateCallback()
		l.Warn().Int64("user_id", userID).Str("callback_id", query.ID).Msg("Duplicate callback query detected")
		return
	}

	if query.Data == "" || query.Message == nil || query.Message.Chat == nil {
		l.Warn().Int64("user_id", userID).Msg("Callback without data or message")
		b.answerCallback(ctx, query.ID, callbackAnswer{text: "Ошибка: данные не получены"})
		return
	}

	cb := ParseCallback(query.Data)
	if b.metrics != nil {
		b.metrics.CallbacksTotal.WithLabelValues(cb.Kind.String()).Inc()
	}
	l.Info().Int64("user_id", userID).Str("data", query.Data).Msg("Callback query")

	var answer callbackAnswer
	switch cb.Kind {
	case CallbackNoop:

	case CallbackLanguage:
		answer = b.handleLanguageCallback(ctx, query, cb)

	case CallbackCheckSubscription:
		answer = b.handleCheckSubscription(ctx, query)

	case CallbackSubscriptionHelp:
		answer = b.handleSubscriptionHelp(ctx, query)

	case CallbackMenu, CallbackFAQItem:
		answer = b.handleMenuCallback(ctx, query, cb)

	case CallbackAdmin, CallbackBroadcastAudience, CallbackBroadcastConfirm, CallbackBroadcastCancel:
		if !b.userService.IsAdmin(userID) {
			l.Warn().Int64("user_id", userID).Msg("Unauthorized admin callback")
			answer = callbackAnswer{text: i18n.T(b.userLanguage(ctx, userID), "access_denied")}
			break
		}
		answer = b.handleAdminCallback(ctx, query, cb)

	default:
		l.Warn().Int64("user_id", userID).Str("data", query.Data).Msg("Unknown callback data")
		answer = callbackAnswer{text: i18n.T(b.userLanguage(ctx, userID), "unknown_command")}
	}

	b.answerCallback(ctx, query.ID, answer)
}

func (b *Bot) answerCallback(ctx context.Context, callbackID string, answer callbackAnswer) {
	var err error
	if answer.alert {
		err = b.tgService.AnswerCallbackAlert(callbackID, answer.text)
	} else {
		err = b.tgService.AnswerCallback(callbackID, answer.text)
	}
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to answer callback")
	}
}
