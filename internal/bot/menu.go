package bot

import (
	"context"
	"fmt"
	"sync"

	"signalbot/internal/i18n"
	"signalbot/internal/models"
	"signalbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// messageTracker помнит последнее сообщение меню в каждом чате,
// чтобы навигация редактировала его, а не плодила новые.
type messageTracker struct {
	mu   sync.Mutex
	last map[int64]int
}

func newMessageTracker() *messageTracker {
	return &messageTracker{last: make(map[int64]int)}
}

func (t *messageTracker) Get(chatID int64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.last[chatID]
	return id, ok
}

func (t *messageTracker) Set(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[chatID] = messageID
}

func (t *messageTracker) Forget(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.last, chatID)
}

// showScreen редактирует messageID, а если не вышло - шлёт новое сообщение и удаляет старое.
func (b *Bot) showScreen(ctx context.Context, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	l := zerolog.Ctx(ctx)

	if messageID != 0 {
		_, err := b.tgService.EditMessage(chatID, messageID, text, &keyboard)
		if err == nil {
			b.menus.Set(chatID, messageID)
			return
		}
		l.Debug().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("Edit failed, sending new message")
	}

	sent, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard)
	if err != nil {
		l.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send menu")
		return
	}

	if messageID != 0 {
		if err := b.tgService.DeleteMessage(chatID, messageID); err != nil {
			l.Debug().Err(err).Int("message_id", messageID).Msg("Failed to delete old menu")
		}
	}
	b.menus.Set(chatID, sent.MessageID)
}

func mainMenuKeyboard(lang, supportLink string) tgbotapi.InlineKeyboardMarkup {
	btn := func(key, data string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, key), data)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("btn_copy_trades", ScreenCopyTrades)),
		tgbotapi.NewInlineKeyboardRow(btn("btn_private_signals", ScreenPrivateSignals)),
		tgbotapi.NewInlineKeyboardRow(btn("btn_free_guide", ScreenFreeGuide)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, "btn_support"), supportLink),
			btn("btn_strategy", ScreenAboutStrategy),
		),
		tgbotapi.NewInlineKeyboardRow(
			btn("btn_vip_bonus", ScreenVIPBonus),
			btn("btn_faq", ScreenFAQ),
		),
		tgbotapi.NewInlineKeyboardRow(btn("btn_pocket_option", ScreenPocketOption)),
		tgbotapi.NewInlineKeyboardRow(btn("btn_settings", ScreenSettings)),
	)
}

func (b *Bot) mainMenuText(lang string, user *models.User) string {
	greeting := i18n.T(lang, "greeting")
	if user != nil && user.FirstName != "" {
		greeting = i18n.T(lang, "greeting_named", i18n.Params{"name": escapeMarkdown(user.FirstName)})
	}
	return i18n.T(lang, "main_menu", i18n.Params{"greeting": greeting})
}

// showMainMenu новым сообщением, например после сохранения телефона.
func (b *Bot) showMainMenu(ctx context.Context, chatID, userID int64) {
	b.renderMainMenu(ctx, chatID, 0, userID)
}

func (b *Bot) renderMainMenu(ctx context.Context, chatID int64, messageID int, userID int64) {
	user, err := b.userService.GetUser(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Main menu without user profile")
	}

	lang := i18n.Default
	if user != nil {
		lang = i18n.Normalize(user.Language)
	}

	keyboard := mainMenuKeyboard(lang, telegramLink(b.supportUsername()))
	text := b.mainMenuText(lang, user)
	if messageID != 0 {
		b.showScreen(ctx, chatID, messageID, text, keyboard)
	} else {
		sent, err := b.tgService.SendWithInlineKeyboard(chatID, text, keyboard)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send main menu")
			return
		}
		b.menus.Set(chatID, sent.MessageID)
	}

	status := map[string]bool{}
	if user != nil {
		status = map[string]bool{
			"is_subscribed": user.IsSubscribed,
			"is_registered": user.IsRegistered,
			"has_deposit":   user.HasDeposit,
			"is_vip":        user.VIPStatus,
		}
	}
	b.userService.LogAction(ctx, userID, models.ActionMainMenuShown, map[string]interface{}{
		"user_status":  status,
		"personalized": user != nil,
	})

	if err := b.stateService.SetUserState(ctx, userID, models.StateMainMenu, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Failed to set main menu state")
	}
}

// handleMenuCallback навигация по экранам главного меню.
func (b *Bot) handleMenuCallback(ctx context.Context, query *tgbotapi.CallbackQuery, cb Callback) callbackAnswer {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	lang := b.userLanguage(ctx, userID)

	if b.spam.IsSpam(ctx, userID, service.ActionMenuInteraction) {
		return callbackAnswer{text: i18n.T(lang, "too_many_attempts"), alert: true}
	}

	b.userService.LogAction(ctx, userID, models.ActionMenuInteraction, map[string]interface{}{
		"callback_data": cb.Raw,
		"menu_type":     MenuType(cb.Screen),
	})

	if cb.Kind == CallbackFAQItem {
		if cb.FAQ > i18n.FAQCount {
			return callbackAnswer{text: i18n.T(lang, "invalid_data")}
		}
		b.showFAQItem(ctx, chatID, messageID, lang, cb.FAQ)
		return callbackAnswer{}
	}

	back := backKeyboard(lang, "btn_back_to_menu", ScreenMainMenu)

	switch cb.Screen {
	case ScreenMainMenu:
		b.renderMainMenu(ctx, chatID, messageID, userID)

	case ScreenCopyTrades:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "copy_trades"),
			b.registrationKeyboard(lang, "btn_register_bonus", userID))

	case ScreenPrivateSignals:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "private_signals"),
			b.registrationKeyboard(lang, "btn_register_access", userID))

	case ScreenFreeGuide:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "free_guide"), back)

	case ScreenAboutStrategy:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "about_strategy"), back)

	case ScreenVIPBonus:
		b.showScreen(ctx, chatID, messageID,
			i18n.T(lang, "vip_bonus", i18n.Params{"promo": b.config.Bot.PromoCode}),
			b.registrationKeyboard(lang, "btn_get_bonus", userID))

	case ScreenFAQ:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "faq"), faqKeyboard(lang))

	case ScreenPocketOption:
		b.showScreen(ctx, chatID, messageID,
			i18n.T(lang, "pocket_option", i18n.Params{"promo": b.config.Bot.PromoCode}),
			b.registrationKeyboard(lang, "btn_po_register", userID))

	case ScreenSettings:
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "settings"), tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_change_language"), ScreenChangeLanguage),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_menu"), ScreenMainMenu),
			),
		))

	case ScreenChangeLanguage:
		keyboard := languageKeyboard()
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back"), ScreenSettings),
		))
		b.showScreen(ctx, chatID, messageID, i18n.T(lang, "change_language"), keyboard)

	default:
		return callbackAnswer{text: i18n.T(lang, "unknown_command")}
	}

	return callbackAnswer{}
}

// registrationKeyboard кнопка на партнёрскую регистрацию и возврат в меню.
func (b *Bot) registrationKeyboard(lang, labelKey string, userID int64) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if link := b.pocketOptionLink(userID); link != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(i18n.T(lang, labelKey), link),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_menu"), ScreenMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func faqKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 1; i <= i18n.FAQCount; i++ {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, fmt.Sprintf("faq_q_%d", i)), faqCallback(i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_menu"), ScreenMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) showFAQItem(ctx context.Context, chatID int64, messageID int, lang string, n int) {
	text := fmt.Sprintf("*%s*\n\n%s",
		i18n.T(lang, fmt.Sprintf("faq_q_%d", n)),
		i18n.T(lang, fmt.Sprintf("faq_a_%d", n)),
	)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_faq"), ScreenFAQ),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_menu"), ScreenMainMenu),
		),
	)
	b.showScreen(ctx, chatID, messageID, text, keyboard)
}
