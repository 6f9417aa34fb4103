package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
)

// Kind tells the UI which remediation to offer: retry after fixing the
// request, or check the connection.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindRejected
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

const msgNetwork = "Network error: Could not reach server. Please check your connection and try again."

// Error is a failed submission carrying a message fit for end users.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// messages holds the per-endpoint wording for each failure kind.
type messages struct {
	rejectedDefault string
	network         string
	unexpected      string
	// jsonDetails renders non-string details as compact JSON instead of a
	// comma-joined list, and ignores the detail field.
	jsonDetails bool
}

var (
	publicMessages = messages{
		rejectedDefault: "Failed to create order",
		network:         msgNetwork,
		unexpected:      "Failed to create order",
	}
	offlineMessages = messages{
		rejectedDefault: "Failed to create offline order",
		network:         "Network error: Failed to create offline order",
		unexpected:      "Failed to create offline order",
		jsonDetails:     true,
	}
)

func describe(err error, m messages) *Error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("%s: %v", m.unexpected, err), Err: err}
	}

	switch be.Kind {
	case backend.KindNetwork:
		return &Error{Kind: KindNetwork, Message: m.network, Err: err}
	case backend.KindRejected:
		msg := be.Body.Error
		if msg == "" {
			msg = m.rejectedDefault
		}
		switch {
		case m.jsonDetails:
			if details := jsonDetails(be.Body.Details); details != "" {
				msg += ": " + details
			}
		case be.Body.DetailsText() != "":
			msg += ": " + be.Body.DetailsText()
		case be.Body.Detail != "":
			msg += ": " + be.Body.Detail
		}
		return &Error{Kind: KindRejected, Status: be.Status, Message: msg, Err: err}
	default:
		return &Error{Kind: KindUnexpected, Status: be.Status, Message: fmt.Sprintf("%s: %v", m.unexpected, be.Err), Err: err}
	}
}

func jsonDetails(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
