package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"signalbot/internal/i18n"
	"signalbot/internal/models"
	"signalbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var audienceLabels = map[models.Audience]string{
	models.AudienceAll:        "👥 Все пользователи",
	models.AudiencePhone:      "📱 С телефоном",
	models.AudienceSubscribed: "📢 Подписчики канала",
	models.AudienceRegistered: "📝 Зарегистрированные",
	models.AudienceDeposit:    "💰 С депозитом",
	models.AudienceVIP:        "👑 VIP",
}

var jobStatusIcons = map[models.BroadcastStatus]string{
	models.BroadcastPending:   "⏳",
	models.BroadcastRunning:   "📤",
	models.BroadcastCompleted: "✅",
	models.BroadcastAborted:   "⛔️",
}

func audienceLabel(a models.Audience) string {
	if label, ok := audienceLabels[a]; ok {
		return label
	}
	return string(a)
}

const adminMenuText = "🔧 *Админ-панель*\n\nВыберите действие:"

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", AdminStats),
			tgbotapi.NewInlineKeyboardButtonData("👥 Пользователи", pageCallback(AdminUsers, 0)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Рассылка", AdminBroadcast),
			tgbotapi.NewInlineKeyboardButtonData("📋 Логи", pageCallback(AdminLogs, 0)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", AdminSettings),
			tgbotapi.NewInlineKeyboardButtonData("📤 Рассылки", AdminJobs),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Экспорт пользователей", AdminExport),
		),
	)
}

func backToAdminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", AdminMenu),
		),
	)
}

func (b *Bot) handleAdmin(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.userService.IsAdmin(userID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", userID).Msg("Admin panel access denied")
		b.sendMessage(ctx, chatID, "❌ У вас нет доступа к админ-панели")
		return
	}

	if sent, err := b.sendWithKeyboard(ctx, chatID, adminMenuText, adminMenuKeyboard()); err == nil {
		b.menus.Set(chatID, sent.MessageID)
	}

	b.userService.LogAction(ctx, userID, models.ActionAdminPanelAccessed, nil)
	if err := b.stateService.SetUserState(ctx, userID, models.StateAdminMenu, nil); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("Failed to set admin state")
	}
}

// handleAdminCallback вызывается только для администраторов.
func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery, cb Callback) callbackAnswer {
	adminID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	l := zerolog.Ctx(ctx)

	switch cb.Kind {
	case CallbackBroadcastAudience:
		return b.selectBroadcastAudience(ctx, adminID, chatID, messageID, cb.Audience)
	case CallbackBroadcastConfirm:
		return b.confirmBroadcast(ctx, adminID, chatID, messageID)
	case CallbackBroadcastCancel:
		if err := b.broadcast.Cancel(ctx, adminID); err != nil {
			l.Warn().Err(err).Msg("Failed to cancel broadcast draft")
		}
		b.showScreen(ctx, chatID, messageID, "❌ Рассылка отменена", backToAdminKeyboard())
		return callbackAnswer{}
	}

	var err error
	switch cb.Screen {
	case AdminMenu:
		b.showScreen(ctx, chatID, messageID, adminMenuText, adminMenuKeyboard())
		err = b.stateService.SetUserState(ctx, adminID, models.StateAdminMenu, nil)

	case AdminStats:
		err = b.showAdminStats(ctx, chatID, messageID)

	case AdminUsers:
		err = b.renderUsersPage(ctx, PaginationParams{
			ChatID:       chatID,
			MessageID:    messageID,
			Page:         cb.Page,
			Title:        "👥 *Пользователи*",
			Screen:       AdminUsers,
			BackCallback: AdminMenu,
			Empty:        "Пользователей пока нет",
		})

	case AdminLogs:
		err = b.renderLogsPage(ctx, PaginationParams{
			ChatID:       chatID,
			MessageID:    messageID,
			Page:         cb.Page,
			Title:        "📋 *Журнал действий*",
			Screen:       AdminLogs,
			BackCallback: AdminMenu,
			Empty:        "Журнал пуст",
		})

	case AdminSettings:
		err = b.showAdminSettings(ctx, chatID, messageID)

	case AdminBroadcast:
		if _, ok := b.broadcast.Session(adminID); ok {
			if cerr := b.broadcast.Cancel(ctx, adminID); cerr != nil {
				l.Warn().Err(cerr).Msg("Failed to drop previous broadcast draft")
			}
		}
		b.showAudienceSelection(ctx, chatID, messageID, "")

	case AdminJobs:
		b.showBroadcastJobs(ctx, chatID, messageID)

	case AdminExport:
		return b.exportUsers(ctx, chatID)

	default:
		return callbackAnswer{text: i18n.T(i18n.Default, "unknown_command")}
	}

	if err != nil {
		l.Error().Err(err).Str("screen", cb.Screen).Msg("Admin screen failed")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}
	return callbackAnswer{}
}

func (b *Bot) showAdminStats(ctx context.Context, chatID int64, messageID int) error {
	stats, err := b.userService.GetStats(ctx)
	if err != nil {
		return err
	}

	var text strings.Builder
	text.WriteString("📊 *Статистика*\n\n")
	text.WriteString(fmt.Sprintf("👥 Всего пользователей: %d\n", stats.TotalUsers))
	text.WriteString(fmt.Sprintf("📱 С телефоном: %d (%.1f%%)\n", stats.WithPhone, percent(stats.WithPhone, stats.TotalUsers)))
	text.WriteString(fmt.Sprintf("📢 Подписаны на канал: %d (%.1f%%)\n", stats.Subscribed, percent(stats.Subscribed, stats.TotalUsers)))
	text.WriteString(fmt.Sprintf("📝 Зарегистрированы: %d (%.1f%%)\n", stats.Registered, percent(stats.Registered, stats.TotalUsers)))
	text.WriteString(fmt.Sprintf("💰 С депозитом: %d (%.1f%%)\n", stats.Deposited, percent(stats.Deposited, stats.TotalUsers)))
	text.WriteString(fmt.Sprintf("👑 VIP: %d\n", stats.VIP))
	text.WriteString(fmt.Sprintf("💵 Сумма первых депозитов: $%.2f\n\n", stats.TotalDeposits))

	text.WriteString("🔄 *Конверсия*\n")
	text.WriteString(fmt.Sprintf("Телефон → регистрация: %.1f%%\n", percent(stats.Registered, stats.WithPhone)))
	text.WriteString(fmt.Sprintf("Регистрация → депозит: %.1f%%\n\n", percent(stats.Deposited, stats.Registered)))

	text.WriteString("📅 *Сегодня*\n")
	text.WriteString(fmt.Sprintf("Новых: %d\n", stats.NewToday))
	text.WriteString(fmt.Sprintf("Активных: %d\n", stats.ActiveToday))
	text.WriteString(fmt.Sprintf("Действий за 24 часа: %d", stats.LogsLast24Hours))

	b.showScreen(ctx, chatID, messageID, text.String(), backToAdminKeyboard())
	return nil
}

func (b *Bot) showAdminSettings(ctx context.Context, chatID int64, messageID int) error {
	settings, err := b.userService.ListSettings(ctx)
	if err != nil {
		return err
	}

	channel := b.config.Telegram.ChannelUsername
	if channel == "" {
		channel = "не настроен"
	}
	vip := "❌ не настроен"
	if b.config.Telegram.VIPChannelID != 0 {
		vip = "✅ настроен"
	}

	running := 0
	for _, job := range b.broadcast.Jobs() {
		if job.Status == models.BroadcastRunning {
			running++
		}
	}

	var text strings.Builder
	text.WriteString("⚙️ *Настройки бота*\n\n")
	text.WriteString(fmt.Sprintf("📢 Канал: %s\n", escapeMarkdown(channel)))
	text.WriteString(fmt.Sprintf("👑 VIP канал: %s\n", vip))
	text.WriteString(fmt.Sprintf("🔗 Ссылка Pocket Option: `%s`\n", b.config.Bot.PocketOptionLink))
	text.WriteString(fmt.Sprintf("👮 Администраторов: %d\n", len(b.config.Admins)))
	text.WriteString(fmt.Sprintf("📤 Активных рассылок: %d\n", running))
	text.WriteString(fmt.Sprintf("🏷 Версия: %s (%s)\n", escapeMarkdown(b.config.App.Version), escapeMarkdown(b.config.App.Environment)))

	if len(settings) > 0 {
		text.WriteString("\n*Сохранённые параметры:*\n")
		for _, s := range settings {
			text.WriteString(fmt.Sprintf("• `%s` = `%s`\n", s.Key, truncate(s.Value, 60)))
		}
	}

	b.showScreen(ctx, chatID, messageID, text.String(), backToAdminKeyboard())
	return nil
}

func (b *Bot) showAudienceSelection(ctx context.Context, chatID int64, messageID int, note string) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, audience := range models.Audiences {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(audienceLabel(audience), audienceCallback(audience)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", AdminMenu),
	))

	text := "📢 *Рассылка*\n\nВыберите аудиторию:"
	if note != "" {
		text = note + "\n\n" + text
	}
	b.showScreen(ctx, chatID, messageID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) selectBroadcastAudience(ctx context.Context, adminID, chatID int64, messageID int, audience models.Audience) callbackAnswer {
	count, err := b.broadcast.SelectAudience(ctx, adminID, audience, chatID, messageID)
	switch {
	case errors.Is(err, service.ErrEmptyAudience):
		return callbackAnswer{text: fmt.Sprintf("❌ Нет пользователей для рассылки типа %s", audienceLabel(audience)), alert: true}
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Str("audience", string(audience)).Msg("Failed to select audience")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}

	text := fmt.Sprintf("✍️ *Рассылка: %s*\n\nПолучателей: %d\n\n"+
		"Отправьте сообщение для рассылки: текст, фото, видео или документ. Inline-кнопки сообщения сохранятся.",
		audienceLabel(audience), count)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbBroadcastCancel),
		),
	)
	b.showScreen(ctx, chatID, messageID, text, keyboard)
	return callbackAnswer{}
}

// handleBroadcastContent следующее сообщение администратора после выбора аудитории.
func (b *Bot) handleBroadcastContent(ctx context.Context, msg *tgbotapi.Message) {
	adminID := msg.From.ID
	chatID := msg.Chat.ID

	preview, err := b.broadcast.CaptureContent(ctx, adminID, msg)
	switch {
	case errors.Is(err, service.ErrEmptyBroadcast):
		b.sendMessage(ctx, chatID, "❌ Сообщение пустое. Отправьте текст, фото, видео или документ.")
		return
	case errors.Is(err, service.ErrNoBroadcastSession), errors.Is(err, service.ErrNotAwaitingBroadcast):
		if cerr := b.stateService.ClearUserState(ctx, adminID); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("Failed to clear admin state")
		}
		b.sendMessage(ctx, chatID, "❌ Контекст рассылки не найден. Начните заново.")
		return
	case err != nil:
		b.sendError(ctx, chatID, i18n.Default, err)
		return
	}

	media := preview.MediaLabel
	if media == "" {
		media = "нет"
	}
	body := preview.Text
	if body == "" {
		body = "(без текста)"
	}

	text := fmt.Sprintf("📋 *Предпросмотр рассылки*\n\n👥 Аудитория: %s\n📊 Получателей: %d\n📎 Медиа: %s\n🔘 Кнопок: %d\n\n%s",
		audienceLabel(preview.Audience), preview.TargetCount, media, preview.ButtonCount, escapeMarkdown(body))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", cbBroadcastConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", cbBroadcastCancel),
		),
	)
	if sent, err := b.sendWithKeyboard(ctx, chatID, text, keyboard); err == nil {
		b.menus.Set(chatID, sent.MessageID)
	}
}

func (b *Bot) confirmBroadcast(ctx context.Context, adminID, chatID int64, messageID int) callbackAnswer {
	job, err := b.broadcast.Confirm(ctx, adminID, chatID)
	switch {
	case errors.Is(err, service.ErrNoBroadcastSession):
		return callbackAnswer{text: "❌ Контекст рассылки не найден. Начните заново.", alert: true}
	case errors.Is(err, service.ErrEmptyAudience):
		b.showAudienceSelection(ctx, chatID, messageID, "❌ Получателей не осталось.")
		return callbackAnswer{}
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to start broadcast")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}

	if b.metrics != nil {
		b.metrics.BroadcastsStarted.WithLabelValues(string(job.Audience)).Inc()
	}

	text := fmt.Sprintf("🚀 *Рассылка запущена!*\n\n🆔 `%s`\n👥 %s\n📊 Получателей: %d\n\nПо завершении придёт отчёт.",
		job.ID, audienceLabel(job.Audience), job.Snapshot().Stats.Total)
	b.showScreen(ctx, chatID, messageID, text, backToAdminKeyboard())
	return callbackAnswer{}
}

func (b *Bot) showBroadcastJobs(ctx context.Context, chatID int64, messageID int) {
	jobs := b.broadcast.Jobs()

	var text strings.Builder
	text.WriteString("📤 *Рассылки*\n\n")
	if len(jobs) == 0 {
		text.WriteString("Рассылок ещё не было")
	}
	// новые сверху
	for i := len(jobs) - 1; i >= 0; i-- {
		job := jobs[i]
		icon := jobStatusIcons[job.Status]
		text.WriteString(fmt.Sprintf("%s %s %s\n", icon, job.StartedAt.Format("02.01 15:04"), audienceLabel(job.Audience)))
		text.WriteString(fmt.Sprintf("   📨 %d/%d, ошибок: %d, заблокировали: %d\n",
			job.Stats.Sent, job.Stats.Total, job.Stats.Errors, job.Stats.Blocked))
	}

	b.showScreen(ctx, chatID, messageID, text.String(), backToAdminKeyboard())
}

func (b *Bot) exportUsers(ctx context.Context, chatID int64) callbackAnswer {
	users, err := b.userService.GetAllUsers(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to load users for export")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}

	path, err := b.exportUsersToExcel(ctx, users)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to build users export")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}

	if err := b.tgService.SendDocument(chatID, path, fmt.Sprintf("📥 Пользователи: %d", len(users))); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", path).Msg("Failed to send export")
		return callbackAnswer{text: i18n.T(i18n.Default, "error"), alert: true}
	}
	return callbackAnswer{text: "✅ Файл отправлен"}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}
