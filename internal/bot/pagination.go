package bot

import (
	"context"
	"fmt"
	"strings"

	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PaginationParams struct {
	ChatID       int64
	MessageID    int // 0 if new message
	Page         int
	Title        string
	Screen       string
	BackCallback string
	Empty        string
}

// renderPaginatedList - универсальная функция для отрисовки пагинированного списка.
// renderer получает абсолютные индексы первой и последней записи страницы.
func (b *Bot) renderPaginatedList(
	ctx context.Context,
	params PaginationParams,
	totalCount int,
	itemsPerPage int,
	renderer func(startIdx, endIdx int) string,
) {
	if itemsPerPage <= 0 {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = models.DefaultPaginationSize
	}
	if params.Page < 0 {
		params.Page = 0
	}

	startIdx := params.Page * itemsPerPage
	endIdx := startIdx + itemsPerPage
	if endIdx > totalCount {
		endIdx = totalCount
	}
	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Страница %d из %d\n\n", params.Page+1, totalPages))
	}
	if totalCount == 0 || startIdx >= totalCount {
		message.WriteString(params.Empty)
	} else {
		message.WriteString(renderer(startIdx, endIdx))
	}

	// Добавляем навигационные кнопки
	var keyboard [][]tgbotapi.InlineKeyboardButton
	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", pageCallback(params.Screen, params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️", pageCallback(params.Screen, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад в меню", params.BackCallback),
		})
	}

	b.showScreen(ctx, params.ChatID, params.MessageID, message.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

// renderUsersPage - страница списка пользователей для админки
func (b *Bot) renderUsersPage(ctx context.Context, params PaginationParams) error {
	pageSize := b.config.Bot.PaginationSize
	users, total, err := b.userService.ListUsers(ctx, params.Page, pageSize)
	if err != nil {
		return err
	}
	if pageSize <= 0 {
		pageSize = models.DefaultPaginationSize
	}

	b.renderPaginatedList(ctx, params, total, pageSize, func(startIdx, _ int) string {
		var content strings.Builder
		for i, user := range users {
			flags := ""
			if user.HasPhone() {
				flags += "📱"
			}
			if user.IsSubscribed {
				flags += "📢"
			}
			if user.IsRegistered {
				flags += "📝"
			}
			if user.HasDeposit {
				flags += "💰"
			}
			if user.VIPStatus {
				flags += "👑"
			}

			content.WriteString(fmt.Sprintf("%d. %s `%d` %s\n", startIdx+i+1, escapeMarkdown(user.DisplayName()), user.TelegramID, flags))
			content.WriteString(fmt.Sprintf("   🕐 %s\n", user.LastActivity.Format("02.01.2006 15:04")))
		}
		return content.String()
	})
	return nil
}

// logsShown сколько записей журнала выводится на странице, остальное сворачивается.
const logsShown = 10

// renderLogsPage - страница журнала действий
func (b *Bot) renderLogsPage(ctx context.Context, params PaginationParams) error {
	pageSize := b.config.Bot.LogsPageSize
	if pageSize <= 0 {
		pageSize = models.DefaultLogsPageSize
	}
	logs, total, err := b.userService.RecentLogs(ctx, params.Page, pageSize)
	if err != nil {
		return err
	}

	b.renderPaginatedList(ctx, params, total, pageSize, func(startIdx, _ int) string {
		var content strings.Builder
		for i, entry := range logs {
			if i == logsShown {
				content.WriteString(fmt.Sprintf("… ещё %d на этой странице\n", len(logs)-logsShown))
				break
			}
			who := entry.FirstName
			if entry.Username != "" {
				who = "@" + entry.Username
			}
			if who == "" {
				who = fmt.Sprint(entry.TelegramID)
			}
			content.WriteString(fmt.Sprintf("%d. %s `%s` %s\n",
				startIdx+i+1,
				entry.Timestamp.Format("02.01 15:04:05"),
				entry.Action,
				escapeMarkdown(who),
			))
		}
		return content.String()
	})
	return nil
}
