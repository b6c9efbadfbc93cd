package service

import (
	"sync"

	"signalbot/internal/models"
)

// CallbackGuard помнит недавно обработанные callback id.
// При переполнении за один проход выбрасывается старшая половина.
type CallbackGuard struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]struct{}
	order    []string
}

func NewCallbackGuard(capacity int) *CallbackGuard {
	if capacity <= 1 {
		capacity = models.CallbackGuardCapacity
	}
	return &CallbackGuard{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity+1),
		order:    make([]string, 0, capacity+1),
	}
}

func (g *CallbackGuard) Seen(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.seen[id]
	return ok
}

func (g *CallbackGuard) Record(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recordLocked(id)
}

// CheckAndRecord возвращает true, если id уже встречался. Иначе запоминает его.
func (g *CallbackGuard) CheckAndRecord(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[id]; ok {
		return true
	}
	g.recordLocked(id)
	return false
}

func (g *CallbackGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

func (g *CallbackGuard) recordLocked(id string) {
	if _, ok := g.seen[id]; ok {
		return
	}
	g.seen[id] = struct{}{}
	g.order = append(g.order, id)

	if len(g.order) > g.capacity {
		drop := g.capacity / 2
		for _, old := range g.order[:drop] {
			delete(g.seen, old)
		}
		g.order = append(g.order[:0:0], g.order[drop:]...)
	}
}
