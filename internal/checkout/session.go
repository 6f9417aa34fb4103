package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/restaurant-checkout/internal/cart"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/submission"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/validation"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
)

// ConfirmationDwell is how long the confirmation stays up before the
// checkout returns to browsing.
const ConfirmationDwell = 3 * time.Second

// Submitter posts a validated order.
type Submitter interface {
	Submit(ctx context.Context, draft domain.OrderDraft) (domain.OrderConfirmation, error)
}

// Session is one customer's checkout: a cart plus the state machine.
// Events are serialised by a mutex that is released for the network call.
type Session struct {
	id        string
	cart      *cart.Store
	submitter Submitter
	clock     clock.Clock
	journal   journal.Repository

	mu           sync.Mutex
	snap         Snapshot
	dwell        clock.Timer
	lastActivity time.Time
	// inFlight outlives Submitting: a Close orphans the call but it is still
	// running until the backend answers.
	inFlight bool
}

// NewSession starts a checkout in Browsing. tableNumber is empty outside a
// dine-in table context. j may be nil.
func NewSession(id, tableNumber string, submitter Submitter, clk clock.Clock, j journal.Repository) *Session {
	return &Session{
		id:           id,
		cart:         cart.NewStore(),
		submitter:    submitter,
		clock:        clk,
		journal:      j,
		snap:         Snapshot{State: StateBrowsing, TableNumber: tableNumber},
		lastActivity: clk.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Cart() *cart.Store { return s.cart }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// LastActivity is the time of the last event applied or attempted.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// InFlight reports whether an order call is still waiting on the backend.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// EditCart runs edit against the cart and marks the session active. Edits
// are refused with ErrSubmissionInFlight while an order call is running.
func (s *Session) EditCart(edit func(*cart.Store)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrSubmissionInFlight
	}
	edit(s.cart)
	s.lastActivity = s.clock.Now()
	return nil
}

// Dispatch applies a navigation event: OpenCart, Proceed, ChooseDelivery,
// Back or Close. Submission outcomes are driven internally and rejected here.
func (s *Session) Dispatch(ctx context.Context, t EventType) (Snapshot, error) {
	switch t {
	case EventOpenCart, EventProceed, EventChooseDelivery, EventBack, EventClose:
	default:
		return s.Snapshot(), fmt.Errorf("%w: %s cannot be dispatched", ErrInvalidTransition, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.apply(ctx, Event{Type: t, CartEmpty: s.cart.Len() == 0}, nil); err != nil {
		return s.snap.clone(), err
	}
	if t == EventClose && s.dwell != nil {
		s.dwell.Stop()
		s.dwell = nil
	}
	return s.snap.clone(), nil
}

// Submit validates the form against the cart and, when valid, sends the
// order. Validation and submission failures are reported in the returned
// snapshot, not as an error; the error is reserved for transitions that
// cannot happen, such as a second Submit while one is in flight.
func (s *Session) Submit(ctx context.Context, form Form) (Snapshot, error) {
	s.mu.Lock()
	if s.inFlight {
		defer s.mu.Unlock()
		s.lastActivity = s.clock.Now()
		return s.snap.clone(), ErrSubmissionInFlight
	}
	if err := s.apply(ctx, Event{Type: EventSubmit, Form: form}, nil); err != nil {
		defer s.mu.Unlock()
		return s.snap.clone(), err
	}

	draft := s.draft()
	if res := validation.Validate(draft); !res.Valid {
		defer s.mu.Unlock()
		_ = s.apply(ctx, Event{Type: EventValidationFail, Errors: res.Errors}, nil)
		return s.snap.clone(), nil
	}
	epoch := s.snap.Epoch
	s.inFlight = true
	s.mu.Unlock()

	// Closing the checkout must not cancel the order, so the call outlives
	// the caller's cancellation while keeping its trace.
	conf, err := s.submitter.Submit(context.WithoutCancel(ctx), draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if s.snap.State != StateSubmitting || s.snap.Epoch != epoch {
		if err == nil {
			// The order exists server-side: take out what it carried and
			// leave anything added since.
			s.cart.Deduct(draft.Items)
		}
		slog.InfoContext(ctx, "discarding stale submission result",
			"session_id", s.id, "succeeded", err == nil, "state", s.snap.State)
		return s.snap.clone(), nil
	}

	if err != nil {
		_ = s.apply(ctx, Event{Type: EventSubmitFailed, Failure: failureMessage(err)}, map[string]string{"kind": failureKind(err)})
		return s.snap.clone(), nil
	}

	s.cart.Clear()
	_ = s.apply(ctx, Event{Type: EventSubmitSucceeded, Confirmation: &conf}, conf)
	s.dwell = s.clock.AfterFunc(ConfirmationDwell, func() { s.dwellElapsed(epoch) })
	return s.snap.clone(), nil
}

func (s *Session) dwellElapsed(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.State != StateConfirmed || s.snap.Epoch != epoch {
		return
	}
	s.dwell = nil
	_ = s.apply(context.Background(), Event{Type: EventDwellElapsed}, nil)
}

// apply runs Transition and journals the result. Callers hold mu.
func (s *Session) apply(ctx context.Context, ev Event, detail any) error {
	s.lastActivity = s.clock.Now()

	from := s.snap.State
	next, err := Transition(s.snap, ev)
	if err != nil {
		slog.DebugContext(ctx, "checkout transition rejected",
			"session_id", s.id, "event", ev.Type, "state", from, "error", err)
		return err
	}
	s.snap = next

	slog.DebugContext(ctx, "checkout transition",
		"session_id", s.id, "event", ev.Type, "from", from, "to", next.State)

	if s.journal == nil {
		return nil
	}
	errs := ev.Errors
	if ev.Failure != "" {
		errs = []string{ev.Failure}
	}
	entry := journal.NewEntry(ctx, s.lastActivity, s.id, string(ev.Type), string(from), string(next.State), detail, errs)
	if jerr := s.journal.Append(ctx, entry); jerr != nil {
		slog.WarnContext(ctx, "failed to journal checkout transition", "session_id", s.id, "error", jerr)
	}
	return nil
}

// draft assembles the order from the cart and the submitted form. Callers hold mu.
func (s *Session) draft() domain.OrderDraft {
	lines := s.cart.Lines()
	d := domain.OrderDraft{
		Customer: s.snap.Form.Customer,
		Phone:    s.snap.Form.Phone,
		Items:    lines,
		Total:    domain.Float(domain.Total(lines)),
	}

	switch s.snap.Origin {
	case StateDineInDetails:
		d.OrderType = domain.OrderTypeDineIn
		d.TableNumber = s.snap.TableNumber
		d.Address = "Table " + s.snap.TableNumber
	default:
		d.OrderType = domain.OrderTypeDelivery
		d.Address = s.snap.Form.Address
	}
	return d
}

func failureMessage(err error) string {
	var se *submission.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "Failed to create order: " + err.Error()
}

func failureKind(err error) string {
	var se *submission.Error
	if errors.As(err, &se) {
		return se.Kind.String()
	}
	return submission.KindUnexpected.String()
}

func (s Snapshot) clone() Snapshot {
	if s.Errors != nil {
		s.Errors = append([]string(nil), s.Errors...)
	}
	if s.Confirmation != nil {
		c := *s.Confirmation
		s.Confirmation = &c
	}
	return s
}
