// Package journal defines the append-only audit trail of checkout transitions.
//
// Every state change a checkout session goes through is written as one row,
// so an operator can reconstruct how a customer reached a failed submission
// and jump from the row to the distributed trace through trace_id.
package journal

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Entry is a single transition of a checkout session.
type Entry struct {
	// SessionID is the checkout session the transition belongs to.
	SessionID string

	// Event is the name of the event that caused the transition.
	Event string

	From string
	To   string

	// Detail is an optional JSON document, e.g. the order confirmation.
	Detail string

	// Errors holds validation or submission failures as a JSON array.
	Errors string

	TraceID string
	SpanID  string

	At time.Time
}

// Repository persists journal entries.
type Repository interface {
	// Append adds a row; existing rows are never updated.
	Append(ctx context.Context, entry *Entry) error

	// History returns every entry of a session, oldest first.
	History(ctx context.Context, sessionID string) ([]Entry, error)
}

// Forgetter is implemented by repositories that only hold live sessions and
// must release a session's entries once it is swept. Durable stores keep
// their history and do not implement it.
type Forgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty when
// ctx carries no valid span.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry stamped with the trace of ctx.
func NewEntry(ctx context.Context, at time.Time, sessionID, event, from, to string, detail any, errs []string) *Entry {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	var detailJSON string
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}

	return &Entry{
		SessionID: sessionID,
		Event:     event,
		From:      from,
		To:        to,
		Detail:    detailJSON,
		Errors:    errJSON,
		TraceID:   ti.TraceID,
		SpanID:    ti.SpanID,
		At:        at.UTC(),
	}
}
