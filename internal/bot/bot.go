package bot

import (
	"context"
	"os"
	"sync"
	"time"

	"signalbot/internal/config"
	"signalbot/internal/domain"
	"signalbot/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const updateTimeout = 30 * time.Second

type Bot struct {
	tgService    domain.TelegramService
	config       *config.Config
	stateService domain.StateManager
	userService  domain.UserService
	guard        domain.CallbackGuard
	spam         domain.SpamGuard
	subscription domain.SubscriptionChecker
	broadcast    domain.BroadcastCoordinator
	eventBus     *events.EventBus
	metrics      *Metrics
	menus        *messageTracker
	logger       *zerolog.Logger

	wg sync.WaitGroup
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	stateService domain.StateManager,
	userService domain.UserService,
	guard domain.CallbackGuard,
	spam domain.SpamGuard,
	subscription domain.SubscriptionChecker,
	broadcast domain.BroadcastCoordinator,
	eventBus *events.EventBus,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	b := &Bot{
		tgService:    tgService,
		config:       config,
		stateService: stateService,
		userService:  userService,
		guard:        guard,
		spam:         spam,
		subscription: subscription,
		broadcast:    broadcast,
		eventBus:     eventBus,
		metrics:      metrics,
		menus:        newMessageTracker(),
		logger:       logger,
	}
	b.subscribeEvents()

	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Stop прекращает получение обновлений и ждёт фоновые задачи бота.
func (b *Bot) Stop() {
	b.tgService.StopReceivingUpdates()
	b.wg.Wait()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	kind := updateKind(update)
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdatesProcessed.WithLabelValues(kind).Inc()
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	src := sourceOf(update)
	if src.userID == 0 {
		return
	}

	b.withRecovery(updateCtx, src, func() {
		b.trackActivity(src.userID)

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update.CallbackQuery)
			return
		}

		b.handleMessage(updateCtx, update.Message)
	})
}

func updateKind(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message == nil:
		return "other"
	case update.Message.IsCommand():
		return "command"
	case update.Message.Contact != nil:
		return "contact"
	default:
		return "message"
	}
}
