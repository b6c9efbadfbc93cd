package models

import "time"

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Шаги диалога пользователя.
const (
	StateStart                   = "start"
	StateWaitingSubscription     = "waiting_subscription"
	StateWaitingContact          = "waiting_contact"
	StateMainMenu                = "main_menu"
	StateWaitingBroadcastText    = "waiting_broadcast_text"
	StateWaitingBroadcastConfirm = "waiting_broadcast_confirmation"
	StateAdminMenu               = "admin_menu"
)

// Действия, которые пишутся в user_logs.
const (
	ActionStartCommand              = "start_command"
	ActionLanguageChanged           = "language_changed"
	ActionPhoneShared               = "phone_shared"
	ActionMainMenuShown             = "main_menu_shown"
	ActionMenuInteraction           = "menu_interaction"
	ActionRateLimitExceeded         = "rate_limit_exceeded"
	ActionDuplicatePhoneAttempt     = "duplicate_phone_attempt"
	ActionDuplicatePhoneRejected    = "duplicate_phone_rejected"
	ActionSuspiciousContactSharing  = "suspicious_contact_sharing"
	ActionSpamDetected              = "spam_detected"
	ActionSubscriptionConfirmed     = "subscription_confirmed"
	ActionSubscriptionCheckFailed   = "subscription_check_failed"
	ActionSubscriptionPromptShown   = "subscription_prompt_shown"
	ActionSubscriptionHelpRequested = "subscription_help_requested"
	ActionContactRequestShown       = "contact_request_shown"
	ActionAdminPanelAccessed        = "admin_panel_accessed"
	ActionBroadcastCompleted        = "broadcast_completed"
	ActionRegistration              = "registration"
	ActionFirstDeposit              = "first_deposit"
	ActionRepeatDeposit             = "repeat_deposit"
	ActionPostbackPrefix            = "postback_"
)

const (
	// StateIdleTimeout время жизни состояния без активности
	StateIdleTimeout = time.Hour

	// StateSweepInterval период фоновой очистки состояний и окон антиспама
	StateSweepInterval = 5 * time.Minute

	// CallbackGuardCapacity размер множества обработанных callback id
	CallbackGuardCapacity = 1000

	// BroadcastBatchSize после стольких успешных отправок делается пауза
	BroadcastBatchSize = 20

	// BroadcastBatchPause пауза между пачками
	BroadcastBatchPause = time.Second

	// BroadcastProgressEvery шаг отчёта о прогрессе администратору
	BroadcastProgressEvery = 50

	// BroadcastPreviewLimit длина текста в предпросмотре рассылки
	BroadcastPreviewLimit = 100

	// BroadcastJobsRetained сколько завершённых рассылок остаётся в списке заданий
	BroadcastJobsRetained = 20

	// MaxTelegramUserID верхняя граница валидного id пользователя
	MaxTelegramUserID = 9_999_999_999

	// DefaultPaginationSize размер страницы списка пользователей
	DefaultPaginationSize = 10

	// DefaultLogsPageSize размер страницы журнала действий
	DefaultLogsPageSize = 20

	// DefaultLogRetentionDays сколько дней хранить user_logs
	DefaultLogRetentionDays = 30

	// SuspiciousLookback сколько последних записей журнала анализировать
	SuspiciousLookback = 20

	// VIPInviteTTL срок жизни одноразовой ссылки в VIP канал
	VIPInviteTTL = time.Hour
)

const (
	LangRU = "ru"
	LangEN = "en"
)
