// Package gatekeeper decides whether a customer arriving from a table QR code
// may order, and loads the menu when they may.
package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jcmexdev/restaurant-checkout/internal/backend"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

type Outcome string

const (
	OutcomeProceed      Outcome = "proceed"
	OutcomeInvalidTable Outcome = "invalid_table"
	OutcomeOccupied     Outcome = "occupied"
	OutcomeUnavailable  Outcome = "unavailable"
)

const msgUnavailable = "Unable to validate the table right now. Please try again."

// TableValidator checks a table number against the backend.
type TableValidator interface {
	ValidateTable(ctx context.Context, number string) (domain.TableState, error)
}

// MenuSource returns the current menu.
type MenuSource interface {
	Items(ctx context.Context) ([]domain.MenuItem, error)
}

// Policy tunes how validation failures that say nothing about the table
// itself are treated.
type Policy struct {
	// FailOpenOnTransientError lets the customer order when the validation
	// call fails for reasons other than an unknown table.
	FailOpenOnTransientError bool
}

// Result is the gate decision. Menu is only set on OutcomeProceed.
type Result struct {
	Outcome     Outcome
	TableNumber string
	Message     string
	Menu        []domain.MenuItem
}

type Gatekeeper struct {
	tables TableValidator
	menu   MenuSource
	policy Policy
}

func New(tables TableValidator, menu MenuSource, policy Policy) *Gatekeeper {
	return &Gatekeeper{tables: tables, menu: menu, policy: policy}
}

// Enter validates tableNumber, if any, and fetches the menu exactly once when
// the customer may proceed. A blank table number means no table context.
func (g *Gatekeeper) Enter(ctx context.Context, tableNumber string) (Result, error) {
	ctx, span := otel.Tracer("checkout/gatekeeper").Start(ctx, "gatekeeper.Enter")
	defer span.End()

	tableNumber = strings.TrimSpace(tableNumber)
	span.SetAttributes(attribute.String("table.number", tableNumber))

	if tableNumber != "" {
		res, err := g.checkTable(ctx, tableNumber)
		if res.Outcome != OutcomeProceed || err != nil {
			span.SetAttributes(attribute.String("gate.outcome", string(res.Outcome)))
			return res, err
		}
	}

	items, err := g.menu.Items(ctx)
	if err != nil {
		return Result{TableNumber: tableNumber}, fmt.Errorf("gatekeeper: fetch menu: %w", err)
	}
	span.SetAttributes(attribute.String("gate.outcome", string(OutcomeProceed)))
	return Result{Outcome: OutcomeProceed, TableNumber: tableNumber, Menu: items}, nil
}

func (g *Gatekeeper) checkTable(ctx context.Context, n string) (Result, error) {
	state, err := g.tables.ValidateTable(ctx, n)
	if err != nil {
		if unknownTable(err) {
			return invalid(n), nil
		}
		if g.policy.FailOpenOnTransientError {
			slog.WarnContext(ctx, "table validation failed, letting customer through", "table_number", n, "error", err)
			return Result{Outcome: OutcomeProceed, TableNumber: n}, nil
		}
		return Result{Outcome: OutcomeUnavailable, TableNumber: n, Message: msgUnavailable},
			fmt.Errorf("gatekeeper: validate table %q: %w", n, err)
	}

	switch {
	case !state.Exists:
		return invalid(n), nil
	case state.IsOccupied:
		return Result{
			Outcome:     OutcomeOccupied,
			TableNumber: n,
			Message:     fmt.Sprintf("Table %s is currently occupied. Please wait or contact staff.", n),
		}, nil
	default:
		return Result{Outcome: OutcomeProceed, TableNumber: n}, nil
	}
}

func invalid(n string) Result {
	return Result{
		Outcome:     OutcomeInvalidTable,
		TableNumber: n,
		Message:     fmt.Sprintf("Table %s does not exist. Please scan a valid QR code.", n),
	}
}

// unknownTable reports whether the backend said the table does not exist,
// either with a 404 or an error body carrying exists=false.
func unknownTable(err error) bool {
	var be *backend.Error
	if !errors.As(err, &be) || be.Kind != backend.KindRejected {
		return false
	}
	if be.Status == http.StatusNotFound {
		return true
	}
	return be.Body.Exists != nil && !*be.Body.Exists
}
