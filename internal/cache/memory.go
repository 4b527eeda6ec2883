package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

const janitorInterval = time.Minute

type entry struct {
	value    []byte
	deadline time.Time
}

// Memory is an in-process Store for development and tests. Expiry is
// enforced lazily on read and swept periodically by a janitor goroutine.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

// NewMemory creates an in-memory store and starts its janitor.
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Set stores value under key. A non-positive ttl means the entry is
// already expired, which mirrors how an external cache treats it.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := append([]byte(nil), value...)
	m.mu.Lock()
	m.entries[key] = entry{value: cp, deadline: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Get returns the value under key or domain.ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !time.Now().Before(e.deadline) {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Close stops the janitor.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, e := range m.entries {
				if !now.Before(e.deadline) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Store = (*Memory)(nil)
