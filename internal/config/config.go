package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"signalbot/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Backup   BackupConfig   `yaml:"backup"`
	Logging  LoggingConfig  `yaml:"logging"`
	Postback PostbackConfig `yaml:"postback"`
	Admins   []int64        `yaml:"admins"`
	Bot      BotConfig      `yaml:"bot"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken        string `yaml:"bot_token"`
	Debug           bool   `yaml:"debug"`
	ChannelUsername string `yaml:"channel_username"`
	VIPChannelID    int64  `yaml:"vip_channel_id"`
	SupportUsername string `yaml:"support_username"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type PostbackConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Port      int                 `yaml:"port"`
	SecretKey string              `yaml:"secret_key"`
	RateLimit PostbackLimitConfig `yaml:"rate_limit"`
}

type PostbackLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BotConfig struct {
	PocketOptionLink string `yaml:"pocket_option_link"`
	PromoCode        string `yaml:"promo_code"`
	PaginationSize   int    `yaml:"pagination_size"`
	LogsPageSize     int    `yaml:"logs_page_size"`
	LogRetentionDays int    `yaml:"log_retention_days"`
	ExportPath       string `yaml:"export_path"`
}

// envOverrides переменные окружения, перекрывающие YAML.
type envOverrides struct {
	BotToken         string  `envconfig:"BOT_TOKEN"`
	AdminIDs         []int64 `envconfig:"ADMIN_IDS"`
	ChannelUsername  string  `envconfig:"CHANNEL_USERNAME"`
	VIPChannelID     int64   `envconfig:"VIP_CHANNEL_ID"`
	SupportUsername  string  `envconfig:"SUPPORT_USERNAME"`
	SecretKey        string  `envconfig:"POCKETOPTION_SECRET_KEY"`
	PocketOptionLink string  `envconfig:"POCKET_OPTION_LINK"`
	PostbackPort     int     `envconfig:"POSTBACK_PORT"`
	DatabasePath     string  `envconfig:"DATABASE_PATH"`
	RedisAddr        string  `envconfig:"REDIS_ADDR"`
	LogLevel         string  `envconfig:"LOG_LEVEL"`
}

func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Предварительная замена переменных окружения в YAML
		expandedData := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expandedData, &config); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Допускается конфигурация только из окружения
	default:
		return nil, err
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}

	if env.BotToken != "" {
		c.Telegram.BotToken = env.BotToken
	}
	if len(env.AdminIDs) > 0 {
		c.Admins = env.AdminIDs
	}
	if env.ChannelUsername != "" {
		c.Telegram.ChannelUsername = env.ChannelUsername
	}
	if env.VIPChannelID != 0 {
		c.Telegram.VIPChannelID = env.VIPChannelID
	}
	if env.SupportUsername != "" {
		c.Telegram.SupportUsername = env.SupportUsername
	}
	if env.SecretKey != "" {
		c.Postback.SecretKey = env.SecretKey
	}
	if env.PocketOptionLink != "" {
		c.Bot.PocketOptionLink = env.PocketOptionLink
	}
	if env.PostbackPort != 0 {
		c.Postback.Port = env.PostbackPort
		c.Postback.Enabled = true
	}
	if env.DatabasePath != "" {
		c.Database.Path = env.DatabasePath
	}
	if env.RedisAddr != "" {
		c.Redis.Address = env.RedisAddr
		c.Redis.Enabled = true
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if len(c.Admins) == 0 {
		return errors.New("at least one admin id is required")
	}

	for _, id := range c.Admins {
		if id <= 0 {
			return fmt.Errorf("invalid admin id %d", id)
		}
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "signalbot"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/bot.db"
	}
	if c.Postback.Port == 0 {
		c.Postback.Port = 3000
	}
	if c.Postback.RateLimit.RPS <= 0 {
		c.Postback.RateLimit.RPS = 10
	}
	if c.Postback.RateLimit.Burst <= 0 {
		c.Postback.RateLimit.Burst = 20
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	c.Telegram.ChannelUsername = strings.TrimSpace(c.Telegram.ChannelUsername)
	c.Telegram.SupportUsername = strings.TrimPrefix(strings.TrimSpace(c.Telegram.SupportUsername), "@")

	// Bot defaults
	if c.Bot.PaginationSize == 0 {
		c.Bot.PaginationSize = models.DefaultPaginationSize
	}
	if c.Bot.LogsPageSize == 0 {
		c.Bot.LogsPageSize = models.DefaultLogsPageSize
	}
	if c.Bot.LogRetentionDays == 0 {
		c.Bot.LogRetentionDays = models.DefaultLogRetentionDays
	}
	if c.Bot.ExportPath == "" {
		c.Bot.ExportPath = "exports"
	}
	if c.Bot.PocketOptionLink == "" {
		c.Bot.PocketOptionLink = "https://pocketoption.com"
	}
	if c.Bot.PromoCode == "" {
		c.Bot.PromoCode = "ATY737"
	}
	if c.Telegram.SupportUsername == "" {
		c.Telegram.SupportUsername = "support"
	}
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// ChannelConfigured сообщает, включена ли проверка подписки.
func (c *Config) ChannelConfigured() bool {
	return c.Telegram.ChannelUsername != ""
}
