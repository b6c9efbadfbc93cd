package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"signalbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{UserID: 123, CurrentStep: models.StateWaitingContact, TempData: map[string]interface{}{"k": "v"}}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StateWaitingContact, got.CurrentStep)
		assert.Equal(t, "v", got.GetString("k"))
		assert.False(t, got.UpdatedAt.IsZero())

		// возвращается копия, внешние изменения не портят хранилище
		got.TempData["k"] = "changed"
		again, _ := repo.GetState(ctx, 123)
		assert.Equal(t, "v", again.GetString("k"))
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.ClearState(ctx, 123))
		got, _ := repo.GetState(ctx, 123)
		assert.Nil(t, got)
		assert.NoError(t, repo.ClearState(ctx, 999))
	})
}

func TestMemoryStateRepository_IdleExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewMemoryStateRepository(time.Hour)
	repo.SetClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: models.StateMainMenu}))
	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 2, CurrentStep: models.StateMainMenu}))

	clock.Advance(59 * time.Minute)
	got, _ := repo.GetState(ctx, 1)
	require.NotNil(t, got)

	// перезапись сбрасывает таймер простоя
	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 2, CurrentStep: models.StateAdminMenu}))

	clock.Advance(2 * time.Minute)
	got, _ = repo.GetState(ctx, 1)
	assert.Nil(t, got, "state idle for more than an hour must be gone")

	got, _ = repo.GetState(ctx, 2)
	require.NotNil(t, got)
	assert.Equal(t, models.StateAdminMenu, got.CurrentStep)
}

func TestMemoryStateRepository_Sweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewMemoryStateRepository(time.Hour)
	repo.SetClock(clock.Now)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: i, CurrentStep: models.StateStart}))
	}
	clock.Advance(30 * time.Minute)
	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 6, CurrentStep: models.StateStart}))

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 5, repo.Sweep())
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryStateRepository_TimerEviction(t *testing.T) {
	repo := NewMemoryStateRepository(20 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: models.StateStart}))
	assert.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStateRepository_RunSweeper(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		repo.RunSweeper(ctx, time.Millisecond, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
