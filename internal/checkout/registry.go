package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
)

// Registry owns the live sessions of the process.
type Registry struct {
	submitter Submitter
	clock     clock.Clock
	journal   journal.Repository
	idleTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(submitter Submitter, clk clock.Clock, j journal.Repository, idleTTL time.Duration) *Registry {
	return &Registry{
		submitter: submitter,
		clock:     clk,
		journal:   j,
		idleTTL:   idleTTL,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a session; tableNumber is empty outside a table context.
func (r *Registry) Create(tableNumber string) *Session {
	s := NewSession(uuid.NewString(), tableNumber, r.submitter, r.clock, r.journal)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the idle TTL. Sessions with a
// submission in flight are kept. Journals that only hold live sessions are
// told to forget the dropped ones.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.clock.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var dropped []string
	for id, s := range r.sessions {
		if s.LastActivity().After(cutoff) || s.InFlight() {
			continue
		}
		delete(r.sessions, id)
		dropped = append(dropped, id)
	}
	r.mu.Unlock()

	if f, ok := r.journal.(journal.Forgetter); ok {
		for _, id := range dropped {
			if err := f.Forget(ctx, id); err != nil {
				slog.WarnContext(ctx, "failed to forget swept session", "session_id", id, "error", err)
			}
		}
	}
	return len(dropped)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				slog.InfoContext(ctx, "swept idle checkout sessions", "removed", n, "remaining", r.Len())
			}
		}
	}
}
