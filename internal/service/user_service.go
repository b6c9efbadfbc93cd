package service

import (
	"context"
	"fmt"

	"signalbot/internal/config"
	"signalbot/internal/domain"
	"signalbot/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo      domain.Repository
	config    *config.Config
	logger    *zerolog.Logger
	adminsMap map[int64]bool
}

func NewUserService(repo domain.Repository, config *config.Config, logger *zerolog.Logger) *UserService {
	adminsMap := make(map[int64]bool)
	for _, id := range config.Admins {
		adminsMap[id] = true
	}

	return &UserService{
		repo:      repo,
		config:    config,
		logger:    logger,
		adminsMap: adminsMap,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.adminsMap[userID]
}

func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	return s.repo.UpsertUser(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, telegramID)
}

func (s *UserService) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	return s.repo.SetUserLanguage(ctx, telegramID, language)
}

// SavePhone сохраняет уже нормализованный номер.
func (s *UserService) SavePhone(ctx context.Context, telegramID int64, phone string) error {
	return s.repo.UpdateUserPhone(ctx, telegramID, phone)
}

func (s *UserService) SetSubscribed(ctx context.Context, telegramID int64, subscribed bool) error {
	return s.repo.SetSubscribed(ctx, telegramID, subscribed)
}

func (s *UserService) UpdateUserActivity(ctx context.Context, telegramID int64) error {
	return s.repo.UpdateUserActivity(ctx, telegramID)
}

// LogAction пишет в журнал. Ошибка записи только логируется.
func (s *UserService) LogAction(ctx context.Context, telegramID int64, action string, details interface{}) {
	if err := s.repo.LogAction(ctx, telegramID, action, details); err != nil {
		s.logger.Error().Err(err).Int64("user_id", telegramID).Str("action", action).Msg("Failed to log user action")
	}
}

func (s *UserService) GetStats(ctx context.Context) (*models.Stats, error) {
	return s.repo.GetStats(ctx)
}

// ListUsers страница пользователей (нумерация с 0) и общее количество.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	pageSize = s.pageSize(pageSize, s.config.Bot.PaginationSize)
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users, err := s.repo.ListUsers(ctx, clampPage(page)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) RecentLogs(ctx context.Context, page, pageSize int) ([]*models.ActionLog, int, error) {
	pageSize = s.pageSize(pageSize, s.config.Bot.LogsPageSize)
	total, err := s.repo.CountLogs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count logs: %w", err)
	}
	logs, err := s.repo.RecentLogs(ctx, clampPage(page)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *UserService) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	return s.repo.ListSettings(ctx)
}

func (s *UserService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

func (s *UserService) pageSize(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return models.DefaultPaginationSize
}

func clampPage(page int) int {
	if page < 0 {
		return 0
	}
	return page
}
