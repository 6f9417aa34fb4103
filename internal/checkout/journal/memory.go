package journal

import (
	"context"
	"sync"
)

// Memory keeps entries in process. Used when no database path is configured.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

var (
	_ Repository = (*Memory)(nil)
	_ Forgetter  = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *Memory) History(ctx context.Context, sessionID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Forget drops the entries of a session that is no longer live.
func (m *Memory) Forget(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.SessionID != sessionID {
			kept = append(kept, e)
		}
	}
	clear(m.entries[len(kept):])
	m.entries = kept
	return nil
}
