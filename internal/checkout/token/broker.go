// Package token acquires and caches the backend's anti-abuse security token.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
)

const (
	// CacheTTL is how long a fetched token is reused.
	CacheTTL = 30 * time.Second
	// MinAge is how old, on the server clock, a token must be when used.
	MinAge = 3 * time.Second
)

// Source is what the submission path depends on.
type Source interface {
	Get(ctx context.Context) (domain.SecurityToken, error)
}

// Fetcher retrieves a fresh token from the backend.
type Fetcher interface {
	SecurityToken(ctx context.Context) (domain.SecurityToken, error)
}

// Error is a token acquisition failure with a message fit for end users.
type Error struct {
	Kind    backend.Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Broker caches one token per process.
type Broker struct {
	fetcher Fetcher
	clock   clock.Clock

	mu        sync.Mutex
	cached    *domain.SecurityToken
	fetchedAt time.Time
}

var _ Source = (*Broker)(nil)

func NewBroker(fetcher Fetcher, clk clock.Clock) *Broker {
	return &Broker{fetcher: fetcher, clock: clk}
}

// Get returns the cached token while it is younger than CacheTTL, otherwise
// fetches a new one. Failures are returned and never cached.
func (b *Broker) Get(ctx context.Context) (domain.SecurityToken, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	if b.cached != nil && now.Sub(b.fetchedAt) < CacheTTL {
		return *b.cached, nil
	}

	ctx, span := otel.Tracer("checkout/token").Start(ctx, "token.Fetch")
	defer span.End()

	slog.DebugContext(ctx, "fetching security token")
	tok, err := b.fetcher.SecurityToken(ctx)
	if err != nil {
		span.RecordError(err)
		return domain.SecurityToken{}, describe(err)
	}

	b.cached = &tok
	b.fetchedAt = now
	return tok, nil
}

// Invalidate drops the cached token.
func (b *Broker) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cached = nil
}

// Age is how old tok is at now, measured against the server timestamp.
func Age(tok domain.SecurityToken, now time.Time) time.Duration {
	issued := time.Unix(0, int64(tok.Timestamp*float64(time.Second)))
	return now.Sub(issued)
}

// Wait is the remaining delay before tok satisfies MinAge; zero if it already does.
func Wait(tok domain.SecurityToken, now time.Time) time.Duration {
	if age := Age(tok, now); age < MinAge {
		return MinAge - age
	}
	return 0
}

func describe(err error) *Error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return &Error{
			Kind:    backend.KindUnexpected,
			Message: fmt.Sprintf("Failed to get security token: %v. Please refresh and try again.", err),
			Err:     err,
		}
	}

	e := &Error{Kind: be.Kind, Err: err}
	switch be.Kind {
	case backend.KindNetwork:
		e.Message = "Network error: Could not reach server. Please check your connection and try again."
	case backend.KindRejected:
		msg := be.Body.Error
		if msg == "" {
			msg = be.Body.Detail
		}
		if msg == "" {
			msg = "Failed to get security token"
		}
		e.Message = msg + ". Please refresh and try again."
	case backend.KindMalformed:
		e.Message = "Invalid security token response from server"
	default:
		e.Message = fmt.Sprintf("Failed to get security token: %v. Please refresh and try again.", be.Err)
	}
	return e
}
