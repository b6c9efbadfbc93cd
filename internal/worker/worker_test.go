package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"signalbot/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 5*time.Second, policy.NextDelay(5), "capped by MaxDelay")

	var zero RetryPolicy
	assert.Equal(t, time.Second, zero.NextDelay(0))
	assert.Equal(t, 8*time.Second, zero.NextDelay(4))
}

func TestRetryPolicyAttempts(t *testing.T) {
	assert.Equal(t, 1, RetryPolicy{}.Attempts())
	assert.Equal(t, 4, RetryPolicy{MaxRetries: 3}.Attempts())
	assert.Equal(t, 1, RetryPolicy{MaxRetries: -1}.Attempts())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

type flakyPruner struct {
	failures int
	calls    int
	removed  int64
}

func (p *flakyPruner) CleanupOldLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	p.calls++
	if p.calls <= p.failures {
		return 0, errors.New("database is locked")
	}
	return p.removed, nil
}

func newTestWorker(store LogPruner) (*RetentionWorker, *[]time.Duration) {
	logger := zerolog.Nop()
	w := NewRetentionWorker(store, 30, RetryPolicy{}, &logger)
	var slept []time.Duration
	w.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return w, &slept
}

func TestRetentionWorker_RetriesThenSucceeds(t *testing.T) {
	pruner := &flakyPruner{failures: 2, removed: 7}
	w, slept := newTestWorker(pruner)

	removed, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
	assert.Equal(t, 3, pruner.calls)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, *slept)
}

func TestRetentionWorker_GivesUp(t *testing.T) {
	pruner := &flakyPruner{failures: 100}
	w, _ := newTestWorker(pruner)

	_, err := w.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 4, pruner.calls)
}

func TestRetentionWorker_DeletesOnlyExpiredLogs(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	require.NoError(t, db.LogAction(ctx, 1, "fresh", nil))
	_, err = db.ExecContext(ctx,
		`INSERT INTO user_logs (telegram_id, action, timestamp) VALUES (?, ?, ?)`,
		1, "stale", time.Now().UTC().Add(-31*24*time.Hour))
	require.NoError(t, err)

	w := NewRetentionWorker(db, 30, RetryPolicy{}, &logger)
	removed, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	actions, err := db.UserActions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, actions)
}

func TestRetentionWorker_StartStopsWithContext(t *testing.T) {
	pruner := &flakyPruner{}
	w, _ := newTestWorker(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.GreaterOrEqual(t, pruner.calls, 1)
}
