package domain

import (
	"context"
	"time"

	"signalbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository постоянное хранилище пользователей, журнала и настроек.
type Repository interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateUserPhone(ctx context.Context, telegramID int64, phone string) error
	SetUserLanguage(ctx context.Context, telegramID int64, language string) error
	SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error
	MarkRegistered(ctx context.Context, telegramID int64, partnerID string, at time.Time) error
	MarkFirstDeposit(ctx context.Context, telegramID int64, amount float64, at time.Time) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)

	CountAudience(ctx context.Context, audience models.Audience) (int, error)
	AudienceIDs(ctx context.Context, audience models.Audience) ([]int64, error)

	AuditLogger
	RecentUserLogs(ctx context.Context, telegramID int64, limit int) ([]*models.ActionLog, error)
	RecentLogs(ctx context.Context, offset, limit int) ([]*models.ActionLog, error)
	CountLogs(ctx context.Context) (int, error)
	CleanupOldLogs(ctx context.Context, olderThan time.Duration) (int64, error)

	GetStats(ctx context.Context) (*models.Stats, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]*models.Setting, error)
}

// AuditLogger пишет записи в журнал действий пользователя.
type AuditLogger interface {
	LogAction(ctx context.Context, telegramID int64, action string, details interface{}) error
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CurrentStep(ctx context.Context, userID int64) string
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard interface{}) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID string, text string) error
	AnswerCallbackAlert(callbackID string, text string) error
	SendDocument(chatID int64, path, caption string) error
	GetChatMemberStatus(channel string, userID int64) (string, error)
	CreateInviteLink(chatID int64, ttl time.Duration, memberLimit int) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// CallbackGuard защищает от повторной обработки одного callback.
type CallbackGuard interface {
	CheckAndRecord(callbackID string) bool
}

type SpamGuard interface {
	IsSpam(ctx context.Context, userID int64, action string) bool
	ValidatePhoneNumber(raw string) (string, error)
	CheckDuplicatePhone(ctx context.Context, userID int64, phone string) bool
	CheckSuspiciousActivity(ctx context.Context, userID int64) (bool, string)
	HandleSpamDetection(ctx context.Context, userID int64, reason string)
}

type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64) (bool, error)
	Enabled() bool
}

type BroadcastCoordinator interface {
	SelectAudience(ctx context.Context, adminID int64, audience models.Audience, chatID int64, messageID int) (int, error)
	CaptureContent(ctx context.Context, adminID int64, msg *tgbotapi.Message) (*models.BroadcastPreview, error)
	Confirm(ctx context.Context, adminID, adminChatID int64) (*models.BroadcastJob, error)
	Cancel(ctx context.Context, adminID int64) error
	Session(adminID int64) (audience models.Audience, ok bool)
	Jobs() []models.BroadcastJobSnapshot
}

type UserService interface {
	IsAdmin(userID int64) bool
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	SetLanguage(ctx context.Context, telegramID int64, language string) error
	SavePhone(ctx context.Context, telegramID int64, phone string) error
	SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error
	UpdateUserActivity(ctx context.Context, telegramID int64) error
	LogAction(ctx context.Context, telegramID int64, action string, details interface{})
	GetStats(ctx context.Context) (*models.Stats, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error)
	RecentLogs(ctx context.Context, page, pageSize int) ([]*models.ActionLog, int, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	SetSetting(ctx context.Context, key, value string) error
}
