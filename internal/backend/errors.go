package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind classifies how a backend call failed.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindRejected means the server answered with a non-2xx status.
	KindRejected
	// KindMalformed means a 2xx body could not be decoded or lacked required fields.
	KindMalformed
	// KindUnexpected covers everything else, such as a cancelled context.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindMalformed:
		return "malformed"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// ErrorBody is the error shape the backend returns: {error, details?, detail?}.
// details may be a string or an array of strings.
type ErrorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
	Detail  string          `json:"detail,omitempty"`
	Exists  *bool           `json:"exists,omitempty"`
}

// DetailsText renders details as text: strings as-is, arrays joined with
// ", ", anything else re-encoded as JSON.
func (b ErrorBody) DetailsText() string {
	raw := bytes.TrimSpace(b.Details)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, v := range list {
			if str, ok := v.(string); ok {
				parts = append(parts, str)
				continue
			}
			b, _ := json.Marshal(v)
			parts = append(parts, string(b))
		}
		return strings.Join(parts, ", ")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// Error is returned by every Client method.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Body   ErrorBody
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRejected:
		msg := e.Body.Error
		if msg == "" {
			msg = e.Body.Detail
		}
		return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.Status, msg)
	default:
		return fmt.Sprintf("backend: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind of err, or 0 when err is not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}

func transportError(op string, err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Kind: KindUnexpected, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	return &Error{Op: op, Kind: KindUnexpected, Err: err}
}
