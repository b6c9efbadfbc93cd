package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"signalbot/internal/database"
	"signalbot/internal/domain"
	"signalbot/internal/metrics"
	"signalbot/internal/models"

	"github.com/rs/zerolog"
)

// Действия, на которые действует ограничение частоты.
const (
	ActionContactSharing    = "contact_sharing"
	ActionSubscriptionCheck = "subscription_check"
	ActionMenuInteraction   = "menu_interaction"
)

// RateLimitPolicy не больше Max событий за Window.
type RateLimitPolicy struct {
	Max    int
	Window time.Duration
}

// DefaultRateLimits лимиты по действиям.
var DefaultRateLimits = map[string]RateLimitPolicy{
	ActionContactSharing:    {Max: 3, Window: time.Minute},
	ActionSubscriptionCheck: {Max: 10, Window: time.Minute},
	ActionMenuInteraction:   {Max: 30, Window: time.Minute},
}

const (
	suspiciousWindow          = time.Hour
	suspiciousStartCommands   = 10
	suspiciousFailedSubChecks = 15
)

type RateLimitStatus struct {
	Current   int
	Max       int
	Remaining int
	ResetAt   time.Time
}

type spamStore interface {
	domain.AuditLogger
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	RecentUserLogs(ctx context.Context, telegramID int64, limit int) ([]*models.ActionLog, error)
}

type windowKey struct {
	userID int64
	action string
}

// AntiSpam скользящие окна частоты действий и эвристики против накруток.
type AntiSpam struct {
	store    spamStore
	policies map[string]RateLimitPolicy
	logger   *zerolog.Logger

	mu      sync.Mutex
	windows map[windowKey][]time.Time
	now     func() time.Time
}

func NewAntiSpam(store spamStore, policies map[string]RateLimitPolicy, logger *zerolog.Logger) *AntiSpam {
	if policies == nil {
		policies = DefaultRateLimits
	}
	return &AntiSpam{
		store:    store,
		policies: policies,
		logger:   logger,
		windows:  make(map[windowKey][]time.Time),
		now:      time.Now,
	}
}

func (a *AntiSpam) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}

// IsSpam учитывает действие и сообщает, превышен ли лимит.
// Отклоненная попытка в окно не записывается.
func (a *AntiSpam) IsSpam(ctx context.Context, userID int64, action string) bool {
	policy, ok := a.policies[action]
	if !ok {
		a.logger.Warn().Str("action", action).Msg("unknown rate limit action")
		return false
	}

	a.mu.Lock()
	now := a.now()
	key := windowKey{userID: userID, action: action}
	times := pruneWindow(a.windows[key], now, policy.Window)

	if len(times) >= policy.Max {
		a.windows[key] = times
		count := len(times)
		a.mu.Unlock()

		a.logger.Warn().Int64("user_id", userID).Str("action", action).Int("count", count).Msg("rate limit exceeded")
		metrics.IncRateLimited(action)
		a.audit(ctx, userID, models.ActionRateLimitExceeded, map[string]interface{}{
			"action":       action,
			"requestCount": count,
		})
		return true
	}

	a.windows[key] = append(times, now)
	a.mu.Unlock()
	return false
}

func (a *AntiSpam) RateLimitStatus(userID int64, action string) (RateLimitStatus, bool) {
	policy, ok := a.policies[action]
	if !ok {
		return RateLimitStatus{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	times := pruneWindow(a.windows[windowKey{userID: userID, action: action}], now, policy.Window)
	status := RateLimitStatus{
		Current:   len(times),
		Max:       policy.Max,
		Remaining: policy.Max - len(times),
		ResetAt:   now,
	}
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	if len(times) > 0 {
		status.ResetAt = times[0].Add(policy.Window)
	}
	return status, true
}

// Sweep убирает окна без свежих отметок.
func (a *AntiSpam) Sweep() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	removed := 0
	for key, times := range a.windows {
		policy := a.policies[key.action]
		if len(pruneWindow(times, now, policy.Window)) == 0 {
			delete(a.windows, key)
			removed++
		}
	}
	return removed
}

func (a *AntiSpam) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Sweep(); n > 0 {
				a.logger.Debug().Int("removed", n).Msg("rate limit windows swept")
			}
		}
	}
}

func (a *AntiSpam) ValidatePhoneNumber(raw string) (string, error) {
	return ValidatePhoneNumber(raw)
}

// CheckDuplicatePhone true, если номер уже закреплен за другим пользователем.
// Ошибки хранилища не блокируют пользователя.
func (a *AntiSpam) CheckDuplicatePhone(ctx context.Context, userID int64, phone string) bool {
	canonical := NormalizePhone(phone)

	owner, err := a.store.FindUserByPhone(ctx, canonical)
	if errors.Is(err, database.ErrNotFound) {
		return false
	}
	if err != nil {
		a.logger.Error().Err(err).Int64("user_id", userID).Msg("duplicate phone lookup failed")
		return false
	}
	if owner.TelegramID == userID {
		return false
	}

	a.logger.Warn().Int64("user_id", userID).Int64("owner_id", owner.TelegramID).Msg("duplicate phone attempt")
	a.audit(ctx, userID, models.ActionDuplicatePhoneAttempt, map[string]interface{}{
		"phone":            canonical,
		"existing_user_id": owner.TelegramID,
	})
	return true
}

// CheckSuspiciousActivity смотрит последние записи журнала за час.
func (a *AntiSpam) CheckSuspiciousActivity(ctx context.Context, userID int64) (bool, string) {
	logs, err := a.store.RecentUserLogs(ctx, userID, models.SuspiciousLookback)
	if err != nil {
		a.logger.Error().Err(err).Int64("user_id", userID).Msg("suspicious activity check failed")
		return false, ""
	}

	since := a.clock().Add(-suspiciousWindow)
	starts, failedChecks := 0, 0
	for _, l := range logs {
		if l.Timestamp.Before(since) {
			continue
		}
		switch l.Action {
		case models.ActionStartCommand:
			starts++
		case models.ActionSubscriptionCheckFailed:
			failedChecks++
		}
	}

	if starts > suspiciousStartCommands {
		return true, "too many start commands"
	}
	if failedChecks > suspiciousFailedSubChecks {
		return true, "too many failed subscription checks"
	}
	return false, ""
}

func (a *AntiSpam) HandleSpamDetection(ctx context.Context, userID int64, reason string) {
	a.logger.Warn().Int64("user_id", userID).Str("reason", reason).Msg("spam detected")
	a.audit(ctx, userID, models.ActionSpamDetected, map[string]string{"reason": reason})
}

func (a *AntiSpam) clock() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now()
}

func (a *AntiSpam) audit(ctx context.Context, userID int64, action string, details interface{}) {
	if a.store == nil {
		return
	}
	if err := a.store.LogAction(ctx, userID, action, details); err != nil {
		a.logger.Error().Err(err).Str("action", action).Msg("failed to write audit entry")
	}
}

func pruneWindow(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0:0], times[i:]...)
}
