package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"signalbot/internal/database"
	"signalbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSpamDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAntiSpam_IsSpam_SlidingWindow(t *testing.T) {
	db := setupSpamDB(t)
	logger := zerolog.Nop()
	clock := newFakeClock()
	guard := NewAntiSpam(db, nil, &logger)
	guard.SetClock(clock.Now)
	ctx := context.Background()
	userID := int64(1001)

	for i := 0; i < 3; i++ {
		assert.False(t, guard.IsSpam(ctx, userID, ActionContactSharing), "attempt %d", i+1)
		clock.Advance(time.Second)
	}
	assert.True(t, guard.IsSpam(ctx, userID, ActionContactSharing))

	status, ok := guard.RateLimitStatus(userID, ActionContactSharing)
	require.True(t, ok)
	assert.Equal(t, 3, status.Current)
	assert.Equal(t, 0, status.Remaining)

	// другие действия и пользователи считаются отдельно
	assert.False(t, guard.IsSpam(ctx, userID, ActionMenuInteraction))
	assert.False(t, guard.IsSpam(ctx, userID+1, ActionContactSharing))

	// первая отметка выходит из окна
	clock.Advance(58 * time.Second)
	assert.False(t, guard.IsSpam(ctx, userID, ActionContactSharing))

	logs, err := db.RecentUserLogs(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionRateLimitExceeded, logs[0].Action)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Equal(t, ActionContactSharing, details["action"])
	assert.EqualValues(t, 3, details["requestCount"])
}

func TestAntiSpam_UnknownActionIsNeverSpam(t *testing.T) {
	logger := zerolog.Nop()
	guard := NewAntiSpam(setupSpamDB(t), nil, &logger)

	for i := 0; i < 100; i++ {
		assert.False(t, guard.IsSpam(context.Background(), 1, "teleport"))
	}
	_, ok := guard.RateLimitStatus(1, "teleport")
	assert.False(t, ok)
}

func TestAntiSpam_Sweep(t *testing.T) {
	logger := zerolog.Nop()
	clock := newFakeClock()
	guard := NewAntiSpam(setupSpamDB(t), nil, &logger)
	guard.SetClock(clock.Now)
	ctx := context.Background()

	guard.IsSpam(ctx, 1, ActionMenuInteraction)
	guard.IsSpam(ctx, 2, ActionSubscriptionCheck)
	assert.Equal(t, 0, guard.Sweep())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 2, guard.Sweep())
}

func TestAntiSpam_ConcurrentCountsNeverExceedLimit(t *testing.T) {
	logger := zerolog.Nop()
	guard := NewAntiSpam(setupSpamDB(t), map[string]RateLimitPolicy{
		ActionMenuInteraction: {Max: 30, Window: time.Minute},
	}, &logger)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !guard.IsSpam(ctx, 77, ActionMenuInteraction) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 30, allowed)
}

func TestAntiSpam_CheckDuplicatePhone(t *testing.T) {
	db := setupSpamDB(t)
	logger := zerolog.Nop()
	guard := NewAntiSpam(db, nil, &logger)
	ctx := context.Background()

	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 1, FirstName: "Owner"}))
	require.NoError(t, db.UpsertUser(ctx, &models.User{TelegramID: 2, FirstName: "Other"}))
	require.NoError(t, db.UpdateUserPhone(ctx, 1, "+79991234567"))

	assert.False(t, guard.CheckDuplicatePhone(ctx, 1, "89991234567"), "owner resubmitting own phone")
	assert.False(t, guard.CheckDuplicatePhone(ctx, 2, "+79990000001"), "unused phone")
	assert.True(t, guard.CheckDuplicatePhone(ctx, 2, "8 (999) 123-45-67"))

	logs, err := db.RecentUserLogs(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionDuplicatePhoneAttempt, logs[0].Action)
}

func TestAntiSpam_CheckSuspiciousActivity(t *testing.T) {
	db := setupSpamDB(t)
	logger := zerolog.Nop()
	guard := NewAntiSpam(db, nil, &logger)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, db.LogAction(ctx, 5, models.ActionStartCommand, nil))
	}
	suspicious, _ := guard.CheckSuspiciousActivity(ctx, 5)
	assert.False(t, suspicious, "ten starts is still fine")

	require.NoError(t, db.LogAction(ctx, 5, models.ActionStartCommand, nil))
	suspicious, reason := guard.CheckSuspiciousActivity(ctx, 5)
	assert.True(t, suspicious)
	assert.NotEmpty(t, reason)

	for i := 0; i < 16; i++ {
		require.NoError(t, db.LogAction(ctx, 6, models.ActionSubscriptionCheckFailed, nil))
	}
	suspicious, _ = guard.CheckSuspiciousActivity(ctx, 6)
	assert.True(t, suspicious)

	// записи старше часа не учитываются
	clock := newFakeClock()
	clock.now = time.Now().Add(2 * time.Hour)
	guard.SetClock(clock.Now)
	suspicious, _ = guard.CheckSuspiciousActivity(ctx, 5)
	assert.False(t, suspicious)
}

func TestAntiSpam_HandleSpamDetection(t *testing.T) {
	db := setupSpamDB(t)
	logger := zerolog.Nop()
	guard := NewAntiSpam(db, nil, &logger)
	ctx := context.Background()

	guard.HandleSpamDetection(ctx, 9, "too many start commands")

	actions, err := db.UserActions(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ActionSpamDetected}, actions)
}
