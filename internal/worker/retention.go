package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogPruner удаляет старые записи журнала действий.
type LogPruner interface {
	CleanupOldLogs(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RetentionWorker раз в interval чистит журнал старше retention.
type RetentionWorker struct {
	store       LogPruner
	retention   time.Duration
	interval    time.Duration
	retryPolicy RetryPolicy
	sleep       func(ctx context.Context, d time.Duration) error
	logger      *zerolog.Logger
}

// NewRetentionWorker builds a worker with sane defaults.
func NewRetentionWorker(store LogPruner, retentionDays int, retry RetryPolicy, logger *zerolog.Logger) *RetentionWorker {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 5 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &RetentionWorker{
		store:       store,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		interval:    24 * time.Hour,
		retryPolicy: retry,
		sleep:       Sleep,
		logger:      logger,
	}
}

// Start runs a sweep immediately, then every interval until ctx is done.
func (w *RetentionWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("retention", w.retention).Msg("retention worker started")
	defer w.logger.Info().Msg("retention worker stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce удаляет устаревшие записи, повторяя попытку по RetryPolicy.
func (w *RetentionWorker) RunOnce(ctx context.Context) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < w.retryPolicy.Attempts(); attempt++ {
		if attempt > 0 {
			if err := w.sleep(ctx, w.retryPolicy.NextDelay(attempt)); err != nil {
				return 0, err
			}
		}

		removed, err := w.store.CleanupOldLogs(ctx, w.retention)
		if err == nil {
			if removed > 0 {
				w.logger.Info().Int64("removed", removed).Msg("old action logs removed")
			}
			return removed, nil
		}
		lastErr = err
		w.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("log cleanup failed")
	}

	w.logger.Error().Err(lastErr).Msg("log cleanup gave up")
	return 0, lastErr
}
