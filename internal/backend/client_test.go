package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 0)
}

func TestSecurityToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/security-token/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(HeaderRequestID) == "" {
			t.Error("missing request id header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"security_token":{"timestamp":1700000000,"nonce":"n","signature":"s"}}`))
	})

	tok, err := c.SecurityToken(context.Background())
	if err != nil {
		t.Fatalf("SecurityToken returned error: %v", err)
	}
	if tok.Nonce != "n" || tok.Signature != "s" || tok.Timestamp != 1700000000 {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestSecurityTokenMalformed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	_, err := c.SecurityToken(context.Background())
	if KindOf(err) != KindMalformed {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestRejectedCarriesBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid order","details":["phone is invalid","total mismatch"]}`))
	})

	_, err := c.CreateOrder(context.Background(), PublicOrderRequest{})
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if be.Kind != KindRejected || be.Status != http.StatusBadRequest {
		t.Errorf("unexpected error %+v", be)
	}
	if got := be.Body.DetailsText(); got != "phone is invalid, total mismatch" {
		t.Errorf("DetailsText() = %q", got)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, 0).MenuItems(context.Background())
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestCancelledContextIsUnexpected(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.MenuItems(ctx)
	if KindOf(err) != KindUnexpected {
		t.Fatalf("expected unexpected error, got %v", err)
	}
}

func TestCreateOrderPayload(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderIdempotencyKey) != "key-1" {
			t.Errorf("idempotency key = %q", r.Header.Get(HeaderIdempotencyKey))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["tableNumber"] != nil {
			t.Errorf("tableNumber = %v, want null", body["tableNumber"])
		}
		if _, ok := body["security_token"]; ok {
			t.Error("security_token must be omitted when absent")
		}
		if body["orderType"] != "delivery" {
			t.Errorf("orderType = %v", body["orderType"])
		}
		w.Write([]byte(`{"success":true,"message":"ok","order":{"id":42,"total":"11.00","items":["Pizza x1"]}}`))
	})

	ctx := WithIdempotencyKey(context.Background(), "key-1")
	res, err := c.CreateOrder(ctx, PublicOrderRequest{
		Customer:  "Ahmed",
		Phone:     "0555",
		Address:   "1 Rue Didouche",
		Items:     []domain.CartLine{{ID: "7L", Name: "Pizza", Price: 10, Quantity: 1}},
		Total:     11,
		OrderType: domain.OrderTypeDelivery,
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}
	if res.Order.ID != "42" || float64(res.Order.Total) != 11 {
		t.Errorf("unexpected response %+v", res)
	}
}

func TestValidateTableQuery(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("number") != "12" {
			t.Errorf("number = %q", r.URL.Query().Get("number"))
		}
		w.Write([]byte(`{"exists":true,"is_occupied":true}`))
	})

	state, err := c.ValidateTable(context.Background(), "12")
	if err != nil {
		t.Fatalf("ValidateTable returned error: %v", err)
	}
	if !state.Exists || !state.IsOccupied {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestDetailsText(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    string
	}{
		{name: "absent", details: ``, want: ""},
		{name: "string", details: `"bad phone"`, want: "bad phone"},
		{name: "array", details: `["a","b"]`, want: "a, b"},
		{name: "object", details: `{"phone": ["required"]}`, want: `{"phone":["required"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ErrorBody{Details: json.RawMessage(tt.details)}
			if got := b.DetailsText(); got != tt.want {
				t.Errorf("DetailsText() = %q, want %q", got, tt.want)
			}
		})
	}
}
