// Package backend is the HTTP adapter for the restaurant backend API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

const (
	HeaderRequestID      = "X-Request-Id"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

type idempotencyKeyCtx struct{}

// WithIdempotencyKey attaches a key that is forwarded on order submissions.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// Client talks JSON over HTTP to the backend. No retries are performed.
type Client struct {
	http *resty.Client
}

// New returns a client for baseURL. A zero timeout keeps the transport default.
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc}
}

// SecurityToken fetches a fresh anti-abuse token from the public endpoint.
func (c *Client) SecurityToken(ctx context.Context) (domain.SecurityToken, error) {
	const op = "security token"

	var res securityTokenResponse
	if err := c.do(ctx, op, http.MethodGet, "/orders/security-token/", nil, nil, &res); err != nil {
		return domain.SecurityToken{}, err
	}
	if res.SecurityToken == nil || !res.SecurityToken.Complete() {
		return domain.SecurityToken{}, &Error{
			Op:   op,
			Kind: KindMalformed,
			Err:  fmt.Errorf("response carries no usable security_token"),
		}
	}
	return *res.SecurityToken, nil
}

func (c *Client) CreateOrder(ctx context.Context, req PublicOrderRequest) (PublicOrderResponse, error) {
	var res PublicOrderResponse
	err := c.do(ctx, "create order", http.MethodPost, "/orders/public/", nil, req, &res)
	return res, err
}

func (c *Client) CreateOfflineOrder(ctx context.Context, req OfflineOrderRequest) (OfflineOrderResponse, error) {
	var res OfflineOrderResponse
	err := c.do(ctx, "create offline order", http.MethodPost, "/offline-orders/", nil, req, &res)
	return res, err
}

func (c *Client) ValidateTable(ctx context.Context, number string) (domain.TableState, error) {
	var res domain.TableState
	err := c.do(ctx, "validate table", http.MethodGet, "/tables/validate/",
		map[string]string{"number": number}, nil, &res)
	return res, err
}

func (c *Client) MenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	var res []domain.MenuItem
	err := c.do(ctx, "menu items", http.MethodGet, "/menu-items/", nil, nil, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, op, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(HeaderRequestID, requestID(ctx))
	if key, ok := ctx.Value(idempotencyKeyCtx{}).(string); ok && key != "" {
		req.SetHeader(HeaderIdempotencyKey, key)
	}
	// W3C traceparent, so backend spans join the checkout trace.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return transportError(op, err)
	}

	if !resp.IsSuccess() {
		e := &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode()}
		// A non-JSON error page leaves Body empty; callers fall back to defaults.
		_ = json.Unmarshal(resp.Body(), &e.Body)
		return e
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Op: op, Kind: KindMalformed, Status: resp.StatusCode(), Err: err}
	}
	return nil
}

// requestID reuses the id chi assigned to the inbound request, so one
// checkout action can be followed across both hops.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
