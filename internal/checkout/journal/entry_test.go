package journal

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestNewEntryWithoutSpan(t *testing.T) {
	e := NewEntry(context.Background(), time.Unix(10, 0), "s1", "proceed", "cart", "order_type", nil, nil)

	if e.TraceID != "" || e.SpanID != "" {
		t.Errorf("expected empty trace info, got %q/%q", e.TraceID, e.SpanID)
	}
	if e.Errors != "[]" {
		t.Errorf("Errors = %q, want []", e.Errors)
	}
	if e.Detail != "" {
		t.Errorf("Detail = %q, want empty", e.Detail)
	}
}

func TestNewEntryWithSpan(t *testing.T) {
	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	e := NewEntry(ctx, time.Now(), "s1", "submit_failed", "submitting", "failed",
		map[string]string{"kind": "network"}, []string{"boom"})

	if e.TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" || e.SpanID != "00f067aa0ba902b7" {
		t.Errorf("trace info = %q/%q", e.TraceID, e.SpanID)
	}
	if e.Errors != `["boom"]` {
		t.Errorf("Errors = %q", e.Errors)
	}
	if e.Detail != `{"kind":"network"}` {
		t.Errorf("Detail = %q", e.Detail)
	}
}

func TestMemoryHistoryFiltersBySession(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Append(ctx, &Entry{SessionID: "a", Event: "open_cart"})
	m.Append(ctx, &Entry{SessionID: "b", Event: "open_cart"})
	m.Append(ctx, &Entry{SessionID: "a", Event: "proceed"})

	got, _ := m.History(ctx, "a")
	if len(got) != 2 || got[0].Event != "open_cart" || got[1].Event != "proceed" {
		t.Errorf("History(a) = %+v", got)
	}
}

func TestMemoryForget(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"s1", "s2", "s1"} {
		m.Append(ctx, NewEntry(ctx, time.Unix(10, 0), id, "open_cart", "browsing", "cart", nil, nil))
	}

	if err := m.Forget(ctx, "s1"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if h, _ := m.History(ctx, "s1"); len(h) != 0 {
		t.Errorf("s1 has %d entries after Forget", len(h))
	}
	if h, _ := m.History(ctx, "s2"); len(h) != 1 {
		t.Errorf("s2 has %d entries, want 1", len(h))
	}
}
