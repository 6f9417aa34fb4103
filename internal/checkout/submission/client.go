// Package submission sends validated orders to the backend.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/token"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/clock"
)

const DefaultConfirmationMessage = "Order placed successfully!"

// Backend is the part of the backend adapter the client uses.
type Backend interface {
	CreateOrder(ctx context.Context, req backend.PublicOrderRequest) (backend.PublicOrderResponse, error)
	CreateOfflineOrder(ctx context.Context, req backend.OfflineOrderRequest) (backend.OfflineOrderResponse, error)
}

// Client submits orders. It never retries.
type Client struct {
	backend Backend
	tokens  token.Source // may be nil: orders go out without a token
	clock   clock.Clock
}

func NewClient(b Backend, tokens token.Source, clk clock.Clock) *Client {
	return &Client{backend: b, tokens: tokens, clock: clk}
}

// Submit stamps draft with a security token when one can be obtained and
// posts it. A token younger than token.MinAge is waited on first.
func (c *Client) Submit(ctx context.Context, draft domain.OrderDraft) (domain.OrderConfirmation, error) {
	ctx, span := otel.Tracer("checkout/submission").Start(ctx, "submission.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.type", string(draft.OrderType)),
		attribute.Int("order.lines", len(draft.Items)),
	)

	tok, err := c.acquireToken(ctx)
	if err != nil {
		return domain.OrderConfirmation{}, c.fail(span, &Error{
			Kind:    KindUnexpected,
			Message: fmt.Sprintf("%s: %v", publicMessages.unexpected, err),
			Err:     err,
		})
	}

	res, err := c.backend.CreateOrder(ctx, publicRequest(draft, tok))
	if err != nil {
		return domain.OrderConfirmation{}, c.fail(span, describe(err, publicMessages))
	}
	if !res.Success && res.Order.ID == "" {
		msg := res.Message
		if msg == "" {
			msg = publicMessages.rejectedDefault
		}
		return domain.OrderConfirmation{}, c.fail(span, &Error{Kind: KindRejected, Message: msg})
	}

	conf := domain.OrderConfirmation{OrderID: string(res.Order.ID), Message: res.Message}
	if conf.Message == "" {
		conf.Message = DefaultConfirmationMessage
	}
	slog.InfoContext(ctx, "order submitted", "order_id", conf.OrderID, "order_type", draft.OrderType)
	return conf, nil
}

// SubmitOffline posts a staff-entered order. No token is involved.
func (c *Client) SubmitOffline(ctx context.Context, draft domain.OfflineOrderDraft) (domain.OfflineConfirmation, error) {
	ctx, span := otel.Tracer("checkout/submission").Start(ctx, "submission.SubmitOffline")
	defer span.End()

	res, err := c.backend.CreateOfflineOrder(ctx, backend.OfflineOrderRequest{
		TableNumber: draft.TableNumber,
		Items:       draft.Items,
		Total:       draft.Total,
		Notes:       draft.Notes,
	})
	if err != nil {
		return domain.OfflineConfirmation{}, c.fail(span, describe(err, offlineMessages))
	}

	conf := domain.OfflineConfirmation{
		OrderID:     string(res.Order.ID),
		TableNumber: string(res.Order.Table.Number),
		Total:       float64(res.Order.Total),
		Status:      res.Order.Status,
		Message:     res.Message,
	}
	if conf.TableNumber == "" {
		conf.TableNumber = draft.TableNumber
	}
	slog.InfoContext(ctx, "offline order submitted", "order_id", conf.OrderID, "table_number", conf.TableNumber)
	return conf, nil
}

// acquireToken returns nil when no token could be obtained. The only error it
// returns is a cancelled wait.
func (c *Client) acquireToken(ctx context.Context) (*domain.SecurityToken, error) {
	if c.tokens == nil {
		return nil, nil
	}

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		slog.WarnContext(ctx, "proceeding without security token", "error", err, "security_review", true)
		return nil, nil
	}

	if wait := token.Wait(tok, c.clock.Now()); wait > 0 {
		slog.DebugContext(ctx, "waiting for security token minimum age", "wait_ms", wait.Milliseconds())
		if err := c.clock.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return &tok, nil
}

func (c *Client) fail(span trace.Span, err *Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind.String())
	return err
}

func publicRequest(draft domain.OrderDraft, tok *domain.SecurityToken) backend.PublicOrderRequest {
	req := backend.PublicOrderRequest{
		Customer:      draft.Customer,
		Phone:         draft.Phone,
		Address:       draft.Address,
		Items:         draft.Items,
		Total:         draft.Total,
		OrderType:     draft.OrderType,
		SecurityToken: tok,
	}
	if req.OrderType == "" {
		req.OrderType = domain.OrderTypeDelivery
	}
	if n := strings.TrimSpace(draft.TableNumber); n != "" {
		req.TableNumber = &n
	}
	return req
}
