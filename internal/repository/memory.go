package repository

import (
	"context"
	"sync"
	"time"

	"signalbot/internal/models"

	"github.com/rs/zerolog"
)

type memoryEntry struct {
	state *models.UserState
	timer *time.Timer
}

// MemoryStateRepository держит состояния в памяти процесса.
// Каждая запись живет ttl с момента последней записи: её снимает собственный
// таймер, а периодический Sweep подчищает то, что таймер пропустил.
type MemoryStateRepository struct {
	mu      sync.Mutex
	entries map[int64]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	if ttl <= 0 {
		ttl = models.StateIdleTimeout
	}
	return &MemoryStateRepository{
		entries: make(map[int64]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock подменяет часы, нужно для тестов истечения.
func (r *MemoryStateRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		return nil, nil
	}
	if entry.state.Expired(r.now(), r.ttl) {
		r.removeLocked(userID, entry)
		return nil, nil
	}
	return copyState(entry.state), nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.entries[state.UserID]; ok && old.timer != nil {
		old.timer.Stop()
	}

	stored := copyState(state)
	stored.UpdatedAt = r.now()
	entry := &memoryEntry{state: stored}
	userID := state.UserID
	entry.timer = time.AfterFunc(r.ttl, func() {
		r.expire(userID, entry)
	})
	r.entries[userID] = entry
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[userID]; ok {
		r.removeLocked(userID, entry)
	}
	return nil
}

// Sweep удаляет простаивающие записи и возвращает их количество.
func (r *MemoryStateRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for userID, entry := range r.entries {
		if entry.state.Expired(now, r.ttl) {
			r.removeLocked(userID, entry)
			removed++
		}
	}
	return removed
}

// RunSweeper вызывает Sweep каждые interval до отмены ctx.
func (r *MemoryStateRepository) RunSweeper(ctx context.Context, interval time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 && logger != nil {
				logger.Debug().Int("removed", n).Msg("expired user states swept")
			}
		}
	}
}

func (r *MemoryStateRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *MemoryStateRepository) expire(userID int64, entry *memoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// запись могли перезаписать после запуска таймера
	if current, ok := r.entries[userID]; ok && current == entry {
		delete(r.entries, userID)
	}
}

func (r *MemoryStateRepository) removeLocked(userID int64, entry *memoryEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(r.entries, userID)
}

func copyState(s *models.UserState) *models.UserState {
	out := *s
	if s.TempData != nil {
		out.TempData = make(map[string]interface{}, len(s.TempData))
		for k, v := range s.TempData {
			out.TempData[k] = v
		}
	}
	return &out
}
