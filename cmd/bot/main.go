package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"signalbot/internal/api"
	"signalbot/internal/bot"
	"signalbot/internal/config"
	"signalbot/internal/database"
	"signalbot/internal/domain"
	"signalbot/internal/events"
	"signalbot/internal/logging"
	"signalbot/internal/metrics"
	"signalbot/internal/models"
	"signalbot/internal/repository"
	"signalbot/internal/service"
	"signalbot/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient, stateService := initStateService(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	telegramAPI, err := bot.NewTelegramAPI(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	tgService := service.NewTelegramService(telegramAPI)

	eventBus := events.NewEventBus()

	spam := service.NewAntiSpam(db, service.DefaultRateLimits, logging.Component(logger, "antispam"))
	go spam.RunSweeper(ctx, models.StateSweepInterval)

	userService := service.NewUserService(db, cfg, logging.Component(logger, "users"))
	subscription := service.NewSubscriptionService(tgService, cfg.Telegram.ChannelUsername, logging.Component(logger, "subscription"))
	broadcast := service.NewBroadcastService(ctx, db, stateService, tgService, eventBus, logging.Component(logger, "broadcast"))
	postback := service.NewPostbackService(db, eventBus, cfg.Postback.SecretKey, logging.Component(logger, "postback"))

	if cfg.Postback.Enabled {
		apiServer := api.NewServer(cfg.Postback, postback, logging.Component(logger, "http"))
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Postback server error")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	retention := worker.NewRetentionWorker(db, cfg.Bot.LogRetentionDays, worker.RetryPolicy{}, logging.Component(logger, "retention"))
	go retention.Start(ctx)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
		go backupService.Start(ctx)
	}

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, userService,
		service.NewCallbackGuard(models.CallbackGuardCapacity),
		spam, subscription, broadcast, eventBus,
		bot.NewMetrics(prometheus.DefaultRegisterer),
		logging.Component(logger, "bot"),
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().
		Bool("subscription_check", subscription.Enabled()).
		Bool("postback", cfg.Postback.Enabled).
		Msg("Бот запущен...")
	telegramBot.Start(ctx)

	telegramBot.Stop()
	broadcast.Wait()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logging.Component(baseLogger, "bot-main"), closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Bot.ExportPath, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

// initStateService без Redis состояние живёт только в памяти процесса.
func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	memoryRepo := repository.NewMemoryStateRepository(models.StateIdleTimeout)
	go memoryRepo.RunSweeper(ctx, models.StateSweepInterval, logger)

	var stateRepo domain.StateRepository = memoryRepo
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable, falling back to memory")
		}
		primaryRepo := repository.NewRedisStateRepository(redisClient, models.StateIdleTimeout)
		stateRepo = repository.NewFailoverStateRepository(primaryRepo, memoryRepo, logger)
	}

	return redisClient, service.NewStateService(stateRepo, logging.Component(logger, "state"))
}
