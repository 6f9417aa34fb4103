// Package checkout drives a customer through cart review, order type
// selection, detail entry and submission.
package checkout

import (
	"errors"
	"fmt"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

type State string

const (
	StateBrowsing        State = "browsing"
	StateCart            State = "cart"
	StateOrderType       State = "order_type"
	StateDeliveryDetails State = "delivery_details"
	StateDineInDetails   State = "dine_in_details"
	StateSubmitting      State = "submitting"
	StateConfirmed       State = "confirmed"
	StateFailed          State = "failed"
)

type EventType string

const (
	EventOpenCart        EventType = "open_cart"
	EventProceed         EventType = "proceed"
	EventChooseDelivery  EventType = "choose_delivery"
	EventBack            EventType = "back"
	EventClose           EventType = "close"
	EventSubmit          EventType = "submit"
	EventValidationFail  EventType = "validation_failed"
	EventSubmitSucceeded EventType = "submit_succeeded"
	EventSubmitFailed    EventType = "submit_failed"
	EventDwellElapsed    EventType = "dwell_elapsed"
)

// MsgEmptyCart is shown when the customer tries to check out with nothing in the cart.
const MsgEmptyCart = "Your cart is empty. Please add items before placing an order."

var (
	ErrSessionNotFound    = errors.New("checkout: session not found")
	ErrInvalidTransition  = errors.New("checkout: invalid transition")
	ErrSubmissionInFlight = errors.New("checkout: submission already in flight")
	ErrEmptyCart          = errors.New("checkout: cart is empty")
)

// Form is what the customer typed in the details step.
type Form struct {
	Customer string `json:"customer"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

// Event is an input to Transition. Only the fields relevant to Type are read.
type Event struct {
	Type EventType

	// CartEmpty is consulted by Proceed.
	CartEmpty bool
	// Form is carried by Submit.
	Form Form
	// Errors is carried by ValidationFailed.
	Errors []string
	// Failure is carried by SubmitFailed.
	Failure string
	// Confirmation is carried by SubmitSucceeded.
	Confirmation *domain.OrderConfirmation
}

// Snapshot is the full observable state of a checkout.
type Snapshot struct {
	State State `json:"state"`

	// Origin is the details step a submission started from. It is set while
	// Submitting and Failed.
	Origin State `json:"origin,omitempty"`

	// TableNumber is fixed when the session is opened from a table QR code.
	TableNumber string `json:"table_number,omitempty"`

	Form         Form                      `json:"form"`
	Errors       []string                  `json:"errors,omitempty"`
	Failure      string                    `json:"failure,omitempty"`
	Confirmation *domain.OrderConfirmation `json:"confirmation,omitempty"`

	// Epoch changes whenever an in-flight submission stops being the
	// current one. Results carrying an older epoch are dropped.
	Epoch uint64 `json:"-"`
}

// HasTable reports whether the checkout runs in a dine-in table context.
func (s Snapshot) HasTable() bool { return s.TableNumber != "" }

// Transition applies ev to s. It has no side effects; an error leaves s as it was.
func Transition(s Snapshot, ev Event) (Snapshot, error) {
	if ev.Type == EventClose {
		return closeCheckout(s), nil
	}

	// A failed submission sits on top of its origin step.
	step := s.State
	if step == StateFailed {
		step = s.Origin
	}

	switch step {
	case StateBrowsing:
		if ev.Type == EventOpenCart {
			s.State = StateCart
			return s, nil
		}

	case StateCart:
		if ev.Type == EventProceed {
			if ev.CartEmpty {
				return s, ErrEmptyCart
			}
			if s.HasTable() {
				s.State = StateDineInDetails
			} else {
				s.State = StateOrderType
			}
			s.Errors = nil
			return s, nil
		}

	case StateOrderType:
		switch ev.Type {
		case EventChooseDelivery:
			if s.HasTable() {
				break
			}
			s.State = StateDeliveryDetails
			return s, nil
		case EventBack:
			s.State = StateCart
			return s, nil
		}

	case StateDeliveryDetails, StateDineInDetails:
		switch ev.Type {
		case EventBack:
			s.State = backFrom(step)
			s.Origin = ""
			s.Errors = nil
			s.Failure = ""
			return s, nil
		case EventSubmit:
			s.Origin = step
			s.State = StateSubmitting
			s.Form = ev.Form
			s.Errors = nil
			s.Failure = ""
			s.Epoch++
			return s, nil
		}

	case StateSubmitting:
		switch ev.Type {
		case EventSubmit:
			return s, ErrSubmissionInFlight
		case EventValidationFail:
			s.State = s.Origin
			s.Origin = ""
			s.Errors = ev.Errors
			return s, nil
		case EventSubmitSucceeded:
			s.State = StateConfirmed
			s.Origin = ""
			s.Form = Form{}
			s.Confirmation = ev.Confirmation
			return s, nil
		case EventSubmitFailed:
			s.State = StateFailed
			s.Failure = ev.Failure
			return s, nil
		}

	case StateConfirmed:
		if ev.Type == EventDwellElapsed {
			s.State = StateBrowsing
			s.Confirmation = nil
			return s, nil
		}
	}

	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Type, s.State)
}

func backFrom(step State) State {
	if step == StateDeliveryDetails {
		return StateOrderType
	}
	return StateCart
}

// closeCheckout dismisses the checkout from any state. Closing while
// Submitting orphans the in-flight call.
func closeCheckout(s Snapshot) Snapshot {
	if s.State == StateSubmitting {
		s.Epoch++
	}
	s.State = StateBrowsing
	s.Origin = ""
	s.Errors = nil
	s.Failure = ""
	s.Confirmation = nil
	return s
}
