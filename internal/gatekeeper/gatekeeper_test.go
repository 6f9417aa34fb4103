package gatekeeper

import (
	"context"
	"errors"
	"testing"

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

type stubTables struct {
	state domain.TableState
	err   error
	calls int
}

func (s *stubTables) ValidateTable(ctx context.Context, number string) (domain.TableState, error) {
	s.calls++
	return s.state, s.err
}

type countingMenu struct {
	calls int
	err   error
}

func (m *countingMenu) Items(ctx context.Context) ([]domain.MenuItem, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []domain.MenuItem{{ID: 1, Name: "Pizza", Price: 10}}, nil
}

func boolPtr(b bool) *bool { return &b }

func TestEnter(t *testing.T) {
	transient := &backend.Error{Kind: backend.KindRejected, Status: 500, Body: backend.ErrorBody{Error: "boom"}}

	tests := []struct {
		name          string
		table         string
		tables        *stubTables
		policy        Policy
		wantOutcome   Outcome
		wantMessage   string
		wantMenuCalls int
		wantErr       bool
	}{
		{
			name:          "no table context",
			table:         "",
			tables:        &stubTables{},
			wantOutcome:   OutcomeProceed,
			wantMenuCalls: 1,
		},
		{
			name:          "free table",
			table:         "5",
			tables:        &stubTables{state: domain.TableState{Exists: true}},
			wantOutcome:   OutcomeProceed,
			wantMenuCalls: 1,
		},
		{
			name:          "unknown table",
			table:         "99",
			tables:        &stubTables{state: domain.TableState{Exists: false}},
			wantOutcome:   OutcomeInvalidTable,
			wantMessage:   "Table 99 does not exist. Please scan a valid QR code.",
			wantMenuCalls: 0,
		},
		{
			name:          "404",
			table:         "99",
			tables:        &stubTables{err: &backend.Error{Kind: backend.KindRejected, Status: 404}},
			wantOutcome:   OutcomeInvalidTable,
			wantMessage:   "Table 99 does not exist. Please scan a valid QR code.",
			wantMenuCalls: 0,
		},
		{
			name:  "error body with exists false",
			table: "99",
			tables: &stubTables{err: &backend.Error{Kind: backend.KindRejected, Status: 400,
				Body: backend.ErrorBody{Error: "bad", Exists: boolPtr(false)}}},
			wantOutcome:   OutcomeInvalidTable,
			wantMessage:   "Table 99 does not exist. Please scan a valid QR code.",
			wantMenuCalls: 0,
		},
		{
			name:          "occupied table",
			table:         "3",
			tables:        &stubTables{state: domain.TableState{Exists: true, IsOccupied: true}},
			wantOutcome:   OutcomeOccupied,
			wantMessage:   "Table 3 is currently occupied. Please wait or contact staff.",
			wantMenuCalls: 0,
		},
		{
			name:          "transient failure fails open",
			table:         "5",
			tables:        &stubTables{err: transient},
			policy:        Policy{FailOpenOnTransientError: true},
			wantOutcome:   OutcomeProceed,
			wantMenuCalls: 1,
		},
		{
			name:          "transient failure fails closed",
			table:         "5",
			tables:        &stubTables{err: transient},
			policy:        Policy{FailOpenOnTransientError: false},
			wantOutcome:   OutcomeUnavailable,
			wantMessage:   msgUnavailable,
			wantMenuCalls: 0,
			wantErr:       true,
		},
		{
			name:          "network failure fails open",
			table:         "5",
			tables:        &stubTables{err: &backend.Error{Kind: backend.KindNetwork, Err: errors.New("refused")}},
			policy:        Policy{FailOpenOnTransientError: true},
			wantOutcome:   OutcomeProceed,
			wantMenuCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu := &countingMenu{}
			g := New(tt.tables, menu, tt.policy)

			res, err := g.Enter(context.Background(), tt.table)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.wantOutcome)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", res.Message, tt.wantMessage)
			}
			if menu.calls != tt.wantMenuCalls {
				t.Errorf("menu fetched %d times, want %d", menu.calls, tt.wantMenuCalls)
			}
			if tt.wantOutcome == OutcomeProceed && len(res.Menu) != 1 {
				t.Errorf("expected menu on proceed, got %d items", len(res.Menu))
			}
		})
	}
}

func TestEnterWithoutTableSkipsValidation(t *testing.T) {
	tables := &stubTables{}
	g := New(tables, &countingMenu{}, Policy{})

	if _, err := g.Enter(context.Background(), "  "); err != nil {
		t.Fatal(err)
	}
	if tables.calls != 0 {
		t.Errorf("validation called %d times without a table", tables.calls)
	}
}

func TestEnterMenuFailure(t *testing.T) {
	g := New(&stubTables{state: domain.TableState{Exists: true}}, &countingMenu{err: errors.New("down")}, Policy{})

	if _, err := g.Enter(context.Background(), "5"); err == nil {
		t.Error("expected menu failure to surface")
	}
}
