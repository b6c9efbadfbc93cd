package bot

import (
	"context"
	"errors"

	"signalbot/internal/database"
	"signalbot/internal/i18n"
	"signalbot/internal/models"
	"signalbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleStart сбрасывает диалог и начинает онбординг заново.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	l := zerolog.Ctx(ctx)

	if err := b.stateService.ClearUserState(ctx, userID); err != nil {
		l.Warn().Err(err).Int64("user_id", userID).Msg("Failed to clear state on start")
	}
	if b.userService.IsAdmin(userID) {
		if _, ok := b.broadcast.Session(userID); ok {
			if err := b.broadcast.Cancel(ctx, userID); err != nil {
				l.Warn().Err(err).Msg("Failed to drop broadcast draft")
			}
		}
	}
	b.menus.Forget(chatID)

	user := b.registerUser(ctx, msg.From)
	if user == nil {
		b.sendError(ctx, chatID, i18n.Default, nil)
		return
	}

	b.userService.LogAction(ctx, userID, models.ActionStartCommand, map[string]interface{}{
		"username":      msg.From.UserName,
		"language_code": msg.From.LanguageCode,
	})

	if !user.LanguageSelected {
		b.showLanguageSelection(ctx, chatID)
		return
	}
	b.continueOnboarding(ctx, chatID, user)
}

func (b *Bot) showLanguageSelection(ctx context.Context, chatID int64) {
	sent, err := b.sendWithKeyboard(ctx, chatID, i18n.T(i18n.Default, "choose_language"), languageKeyboard())
	if err == nil {
		b.menus.Set(chatID, sent.MessageID)
	}
}

// continueOnboarding следующий шаг после выбора языка: подписка, телефон, меню.
func (b *Bot) continueOnboarding(ctx context.Context, chatID int64, user *models.User) {
	lang := i18n.Normalize(user.Language)

	if !b.subscription.Enabled() {
		if user.HasPhone() {
			b.showMainMenu(ctx, chatID, user.TelegramID)
			return
		}
		b.requestPhoneNumber(ctx, chatID, user.TelegramID, lang)
		return
	}

	subscribed, err := b.subscription.IsSubscribed(ctx, user.TelegramID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.TelegramID).Msg("Subscription check failed")
		b.userService.LogAction(ctx, user.TelegramID, models.ActionSubscriptionCheckFailed, map[string]interface{}{
			"error": err.Error(),
		})
		b.sendWithKeyboard(ctx, chatID, i18n.T(lang, "subscription_check_failed"), b.subscriptionRetryKeyboard(lang))
		return
	}

	if !subscribed {
		b.showSubscriptionPrompt(ctx, chatID, user.TelegramID, lang)
		return
	}

	b.confirmSubscription(ctx, user)
	b.requestContact(ctx, chatID, user, lang)
}

func (b *Bot) confirmSubscription(ctx context.Context, user *models.User) {
	if !user.IsSubscribed {
		if err := b.userService.SetSubscribed(ctx, user.TelegramID, true); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", user.TelegramID).Msg("Failed to save subscription")
		}
		user.IsSubscribed = true
	}
	b.userService.LogAction(ctx, user.TelegramID, models.ActionSubscriptionConfirmed, map[string]interface{}{
		"channel": b.config.Telegram.ChannelUsername,
	})
}

func (b *Bot) showSubscriptionPrompt(ctx context.Context, chatID, userID int64, lang string) {
	link := telegramLink(b.config.Telegram.ChannelUsername)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, "btn_subscribe"), link),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_subscribed"), cbCheckSubscription),
		),
	)

	if sent, err := b.sendWithKeyboard(ctx, chatID, i18n.T(lang, "subscription_prompt"), keyboard); err == nil {
		b.menus.Set(chatID, sent.MessageID)
	}

	b.userService.LogAction(ctx, userID, models.ActionSubscriptionPromptShown, map[string]interface{}{
		"channel": b.config.Telegram.ChannelUsername,
		"link":    link,
	})
	if err := b.stateService.SetUserState(ctx, userID, models.StateWaitingSubscription, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Failed to set subscription state")
	}
}

func (b *Bot) subscriptionRetryKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, "btn_subscribe"), telegramLink(b.config.Telegram.ChannelUsername)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_check_again"), cbCheckSubscription),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_subscription_help"), cbSubscriptionHelp),
		),
	)
}

// requestContact просит телефон после подтверждённой подписки. Если телефон уже есть - сразу меню.
func (b *Bot) requestContact(ctx context.Context, chatID int64, user *models.User, lang string) {
	if user.HasPhone() {
		b.showMainMenu(ctx, chatID, user.TelegramID)
		return
	}

	b.sendWithKeyboard(ctx, chatID, i18n.T(lang, "contact_request"), contactKeyboard(lang))
	b.userService.LogAction(ctx, user.TelegramID, models.ActionContactRequestShown, nil)

	if err := b.stateService.SetUserState(ctx, user.TelegramID, models.StateWaitingContact, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", user.TelegramID).Msg("Failed to set contact state")
	}
}

// requestPhoneNumber короткий запрос телефона, когда канал не настроен.
func (b *Bot) requestPhoneNumber(ctx context.Context, chatID, userID int64, lang string) {
	b.sendWithKeyboard(ctx, chatID, i18n.T(lang, "share_phone"), contactKeyboard(lang))
	if err := b.stateService.SetUserState(ctx, userID, models.StateWaitingContact, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Failed to set contact state")
	}
}

func (b *Bot) handleLanguageCallback(ctx context.Context, query *tgbotapi.CallbackQuery, cb Callback) callbackAnswer {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	if !i18n.IsValid(cb.Language) {
		return callbackAnswer{text: i18n.T(b.userLanguage(ctx, userID), "invalid_data")}
	}
	lang := cb.Language

	if _, err := b.userService.GetUser(ctx, userID); err != nil {
		if b.registerUser(ctx, query.From) == nil {
			b.sendError(ctx, chatID, lang, err)
			return callbackAnswer{}
		}
	}

	if err := b.userService.SetLanguage(ctx, userID, lang); err != nil {
		b.sendError(ctx, chatID, lang, err)
		return callbackAnswer{}
	}
	b.userService.LogAction(ctx, userID, models.ActionLanguageChanged, map[string]interface{}{
		"language": lang,
	})

	if _, err := b.tgService.EditMessage(chatID, query.Message.MessageID, i18n.T(lang, "language_changed"), nil); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to edit language message")
	}
	b.menus.Forget(chatID)
	b.sendMarkdown(ctx, chatID, i18n.T(lang, "welcome"))

	user, err := b.userService.GetUser(ctx, userID)
	if err != nil {
		b.sendError(ctx, chatID, lang, err)
		return callbackAnswer{}
	}

	if user.HasPhone() {
		b.showMainMenu(ctx, chatID, userID)
	} else {
		b.continueOnboarding(ctx, chatID, user)
	}
	return callbackAnswer{text: i18n.T(lang, "language_changed")}
}

func (b *Bot) handleCheckSubscription(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	lang := b.userLanguage(ctx, userID)

	if b.spam.IsSpam(ctx, userID, service.ActionSubscriptionCheck) {
		return callbackAnswer{text: i18n.T(lang, "too_many_attempts"), alert: true}
	}

	user, err := b.userService.GetUser(ctx, userID)
	if err != nil {
		if user = b.registerUser(ctx, query.From); user == nil {
			return callbackAnswer{text: i18n.T(lang, "error"), alert: true}
		}
	}

	subscribed := true
	if b.subscription.Enabled() {
		subscribed, err = b.subscription.IsSubscribed(ctx, userID)
		if err != nil {
			b.userService.LogAction(ctx, userID, models.ActionSubscriptionCheckFailed, map[string]interface{}{
				"error": err.Error(),
			})
			return callbackAnswer{text: i18n.T(lang, "subscription_check_failed"), alert: true}
		}
	}

	if !subscribed {
		b.userService.LogAction(ctx, userID, models.ActionSubscriptionCheckFailed, map[string]interface{}{
			"reason": "not_subscribed",
		})
		keyboard := b.subscriptionRetryKeyboard(lang)
		b.showScreen(ctx, chatID, query.Message.MessageID, i18n.T(lang, "subscription_prompt"), keyboard)
		return callbackAnswer{text: i18n.T(lang, "subscription_not_found"), alert: true}
	}

	b.confirmSubscription(ctx, user)
	if _, err := b.tgService.EditMessage(chatID, query.Message.MessageID, i18n.T(lang, "subscription_confirmed"), nil); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to edit subscription message")
	}
	b.menus.Forget(chatID)
	b.requestContact(ctx, chatID, user, lang)
	return callbackAnswer{}
}

func (b *Bot) handleSubscriptionHelp(ctx context.Context, query *tgbotapi.CallbackQuery) callbackAnswer {
	userID := query.From.ID
	lang := b.userLanguage(ctx, userID)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_try_again"), cbCheckSubscription),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, "btn_contact_support"), telegramLink(b.supportUsername())),
		),
	)
	b.sendWithKeyboard(ctx, query.Message.Chat.ID,
		i18n.T(lang, "subscription_help", i18n.Params{"support": escapeMarkdown(b.supportUsername())}), keyboard)

	b.userService.LogAction(ctx, userID, models.ActionSubscriptionHelpRequested, nil)
	return callbackAnswer{}
}

// handleContact принимает телефон: лимит, владелец контакта, формат, дубликат, эвристика.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	lang := b.userLanguage(ctx, userID)
	l := zerolog.Ctx(ctx)

	if b.spam.IsSpam(ctx, userID, service.ActionContactSharing) {
		b.sendMessage(ctx, chatID, i18n.T(lang, "too_many_attempts"))
		return
	}

	contact := msg.Contact
	if contact.UserID != 0 && contact.UserID != userID {
		l.Warn().Int64("user_id", userID).Int64("contact_user_id", contact.UserID).Msg("Foreign contact shared")
		b.sendMessage(ctx, chatID, i18n.T(lang, "phone_foreign"))
		return
	}

	phone, err := b.spam.ValidatePhoneNumber(contact.PhoneNumber)
	if err != nil {
		l.Info().Err(err).Int64("user_id", userID).Msg("Phone rejected")
		b.sendMessage(ctx, chatID, b.getErrorMessage(lang, err))
		return
	}

	if b.spam.CheckDuplicatePhone(ctx, userID, phone) {
		b.rejectDuplicatePhone(ctx, chatID, userID, lang, phone)
		return
	}

	if suspicious, reason := b.spam.CheckSuspiciousActivity(ctx, userID); suspicious {
		b.spam.HandleSpamDetection(ctx, userID, reason)
		b.userService.LogAction(ctx, userID, models.ActionSuspiciousContactSharing, map[string]interface{}{
			"reason": reason,
			"phone":  phone,
		})
	}

	if _, err := b.userService.GetUser(ctx, userID); err != nil {
		if b.registerUser(ctx, msg.From) == nil {
			b.sendError(ctx, chatID, lang, err)
			return
		}
	}

	if err := b.userService.SavePhone(ctx, userID, phone); err != nil {
		if errors.Is(err, database.ErrPhoneTaken) {
			b.rejectDuplicatePhone(ctx, chatID, userID, lang, phone)
			return
		}
		b.sendError(ctx, chatID, lang, err)
		return
	}

	b.userService.LogAction(ctx, userID, models.ActionPhoneShared, map[string]interface{}{
		"phone": phone,
	})
	b.sendWithKeyboard(ctx, chatID, i18n.T(lang, "phone_success"), tgbotapi.NewRemoveKeyboard(true))
	b.showMainMenu(ctx, chatID, userID)
}

func (b *Bot) rejectDuplicatePhone(ctx context.Context, chatID, userID int64, lang, phone string) {
	b.sendMessage(ctx, chatID, i18n.T(lang, "duplicate_phone", i18n.Params{"support": b.supportUsername()}))
	b.userService.LogAction(ctx, userID, models.ActionDuplicatePhoneRejected, map[string]interface{}{
		"phone": phone,
	})
}
