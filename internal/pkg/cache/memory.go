package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	mu        sync.Mutex
	clock     clock.Clock
	namespace string
	entries   map[string]memoryEntry
}

var _ Cache = (*memoryCache)(nil)

// NewMemoryCache returns a process-local cache. Expiry is checked lazily on Get.
func NewMemoryCache(clk clock.Clock, namespace string) Cache {
	return &memoryCache{clock: clk, namespace: namespace, entries: make(map[string]memoryEntry)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: s}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.namespace, operation, key)
}
