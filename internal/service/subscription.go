package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signalbot/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type memberStatusFetcher interface {
	GetChatMemberStatus(channel string, userID int64) (string, error)
}

var subscribedStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// SubscriptionService проверяет подписку пользователя на канал.
type SubscriptionService struct {
	tg      memberStatusFetcher
	channel string
	retry   worker.RetryPolicy
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *zerolog.Logger
}

func NewSubscriptionService(tg memberStatusFetcher, channel string, logger *zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		tg:      tg,
		channel: strings.TrimSpace(channel),
		retry: worker.RetryPolicy{
			MaxRetries:    3,
			InitialDelay:  time.Second,
			MaxDelay:      8 * time.Second,
			BackoffFactor: 2,
		},
		sleep:  worker.Sleep,
		logger: logger,
	}
}

// Enabled false, если канал не настроен: тогда шаг подписки пропускается.
func (s *SubscriptionService) Enabled() bool {
	return s.channel != ""
}

// IsSubscribed true для статусов member/administrator/creator.
// 403 и "not found" означают "не подписан" без ошибки.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID int64) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}

	var lastErr error
	for attempt := 0; attempt < s.retry.Attempts(); attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.delayFor(lastErr, attempt)); err != nil {
				return false, err
			}
		}

		status, err := s.tg.GetChatMemberStatus(s.channel, userID)
		if err == nil {
			return subscribedStatuses[status], nil
		}
		lastErr = err

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.Code == 403:
				return false, nil
			case apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "not found"):
				return false, nil
			case apiErr.Code == 429:
				s.logger.Warn().Int64("user_id", userID).Int("retry_after", apiErr.RetryAfter).Msg("subscription check rate limited")
				continue
			default:
				return false, fmt.Errorf("get chat member: %w", err)
			}
		}

		s.logger.Warn().Err(err).Int64("user_id", userID).Int("attempt", attempt+1).Msg("subscription check failed, retrying")
	}

	return false, fmt.Errorf("subscription check gave up after %d retries: %w", s.retry.MaxRetries, lastErr)
}

func (s *SubscriptionService) delayFor(err error, attempt int) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		if apiErr.RetryAfter > 0 {
			return time.Duration(apiErr.RetryAfter) * time.Second
		}
		return time.Second
	}
	return s.retry.NextDelay(attempt)
}
