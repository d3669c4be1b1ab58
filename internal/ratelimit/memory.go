package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter keeps windows in process memory. Counts are lost on restart
// and are not shared between replicas.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, size time.Duration) (int64, time.Time, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(size)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Sweep drops windows that have closed.
func (m *MemoryCounter) Sweep() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}

// Run sweeps on every tick until ctx is done.
func (m *MemoryCounter) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *MemoryCounter) tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
