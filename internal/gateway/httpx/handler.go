package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/restaurant-checkout/internal/cart"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/journal"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/submission"
	"github.com/jcmexdev/restaurant-checkout/internal/checkout/validation"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
	"github.com/jcmexdev/restaurant-checkout/internal/gatekeeper"
)

// Gate decides whether a new session may order.
type Gate interface {
	Enter(ctx context.Context, tableNumber string) (gatekeeper.Result, error)
}

// Menu is the cached catalog.
type Menu interface {
	Items(ctx context.Context) ([]domain.MenuItem, error)
	Line(ctx context.Context, itemID, size string) (domain.CartLine, bool, error)
}

// OfflineSubmitter posts staff-entered orders.
type OfflineSubmitter interface {
	SubmitOffline(ctx context.Context, draft domain.OfflineOrderDraft) (domain.OfflineConfirmation, error)
}

// Handler exposes checkout sessions over JSON.
type Handler struct {
	sessions *checkout.Registry
	gate     Gate
	menu     Menu
	offline  OfflineSubmitter
	journal  journal.Repository // nil-safe: history is empty
}

func NewHandler(sessions *checkout.Registry, gate Gate, menu Menu, offline OfflineSubmitter, j journal.Repository) *Handler {
	return &Handler{sessions: sessions, gate: gate, menu: menu, offline: offline, journal: j}
}

var eventTypes = map[string]checkout.EventType{
	string(checkout.EventOpenCart):       checkout.EventOpenCart,
	string(checkout.EventProceed):        checkout.EventProceed,
	string(checkout.EventChooseDelivery): checkout.EventChooseDelivery,
	string(checkout.EventBack):           checkout.EventBack,
	string(checkout.EventClose):          checkout.EventClose,
}

// CreateSession runs the table gate and, when the customer may order, opens a session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	}

	res, err := h.gate.Enter(r.Context(), req.TableNumber)
	resp := CreateSessionResponse{
		Outcome:     string(res.Outcome),
		Message:     res.Message,
		TableNumber: res.TableNumber,
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "session gate failed", "table_number", req.TableNumber, "error", err)
		if res.Outcome == gatekeeper.OutcomeUnavailable {
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		writeError(w, http.StatusBadGateway, "menu_unavailable", "Failed to load menu items")
		return
	}

	switch res.Outcome {
	case gatekeeper.OutcomeInvalidTable:
		writeJSON(w, http.StatusNotFound, resp)
		return
	case gatekeeper.OutcomeOccupied:
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	s := h.sessions.Create(res.TableNumber)
	resp.SessionID = s.ID()
	resp.Menu = res.Menu
	slog.InfoContext(r.Context(), "checkout session opened", "session_id", s.ID(), "table_number", res.TableNumber)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s, s.Snapshot()))
}

// AddItem puts a line in the cart. A missing name or price is resolved from
// the menu; an explicit price of zero is kept.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.ItemID) == "" || (req.Price != nil && *req.Price < 0) {
		writeError(w, http.StatusBadRequest, "invalid_item", "item_id is required and price must not be negative")
		return
	}

	var line domain.CartLine
	if req.Name != "" && req.Price != nil {
		line = domain.CartLine{
			ID:    domain.LineID(req.ItemID, req.Size),
			Name:  req.Name,
			Price: *req.Price,
			Image: req.Image,
		}
	} else {
		found, ok, err := h.menu.Line(r.Context(), req.ItemID, req.Size)
		if err != nil {
			writeError(w, http.StatusBadGateway, "menu_unavailable", "Failed to load menu items")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "item_not_found", "no menu item "+req.ItemID+" in size "+req.Size)
			return
		}
		line = found
	}
	line.Quantity = req.Quantity

	h.editCart(w, s, func(c *cart.Store) { c.Add(line) })
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	lineID := chi.URLParam(r, "lineID")
	h.editCart(w, s, func(c *cart.Store) { c.UpdateQuantity(lineID, req.Quantity) })
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID := chi.URLParam(r, "lineID")
	h.editCart(w, s, func(c *cart.Store) { c.Remove(lineID) })
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.editCart(w, s, func(c *cart.Store) { c.Clear() })
}

// Dispatch applies a navigation event to the session's state machine.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	ev, known := eventTypes[req.Type]
	if !known {
		writeError(w, http.StatusBadRequest, "unknown_event", "unknown event type "+req.Type)
		return
	}

	snap, err := s.Dispatch(r.Context(), ev)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s, snap))
}

// Submit validates and places the order. Validation and submission failures
// come back inside the snapshot with 200.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	snap, err := s.Submit(r.Context(), checkout.Form{
		Customer: req.Customer,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s, snap))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	out := []JournalEntryResponse{}
	if h.journal != nil {
		entries, err := h.journal.History(r.Context(), s.ID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
			return
		}
		for _, e := range entries {
			out = append(out, JournalEntryResponse{
				Event:   e.Event,
				From:    e.From,
				To:      e.To,
				Detail:  e.Detail,
				Errors:  e.Errors,
				TraceID: e.TraceID,
				At:      e.At.Format(time.RFC3339Nano),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateOfflineOrder places a staff-entered order without a session.
func (h *Handler) CreateOfflineOrder(w http.ResponseWriter, r *http.Request) {
	var req OfflineOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	draft := domain.OfflineOrderDraft{
		TableNumber: strings.TrimSpace(req.TableNumber),
		Items:       req.Items,
		Total:       domain.Float(domain.Total(req.Items)),
		Notes:       req.Notes,
	}
	if res := validation.ValidateOffline(draft); !res.Valid {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: res.Error(), Errors: res.Errors})
		return
	}

	conf, err := h.offline.SubmitOffline(r.Context(), draft)
	if err != nil {
		var se *submission.Error
		if !errors.As(err, &se) {
			writeError(w, http.StatusInternalServerError, "unexpected", err.Error())
			return
		}
		switch se.Kind {
		case submission.KindNetwork:
			writeError(w, http.StatusBadGateway, "backend_unreachable", se.Message)
		case submission.KindRejected:
			writeError(w, http.StatusUnprocessableEntity, "rejected", se.Message)
		default:
			writeError(w, http.StatusBadGateway, "unexpected", se.Message)
		}
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.Items(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "menu fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "menu_unavailable", "Failed to load menu items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "")
		return nil, false
	}
	return s, true
}

// editCart applies edit unless an order call is running, since the cart is
// settled against the order once the backend answers.
func (h *Handler) editCart(w http.ResponseWriter, s *checkout.Session, edit func(*cart.Store)) {
	if err := s.EditCart(edit); err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			writeError(w, http.StatusConflict, "submission_in_flight", "the cart cannot change while the order is being placed")
			return
		}
		writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(s, s.Snapshot()))
}

func sessionResponse(s *checkout.Session, snap checkout.Snapshot) SessionResponse {
	c := s.Cart()
	return SessionResponse{
		ID:           s.ID(),
		State:        snap.State,
		Origin:       snap.Origin,
		TableNumber:  snap.TableNumber,
		Lines:        c.Lines(),
		Subtotal:     domain.Float(c.Subtotal()),
		Tax:          domain.Float(c.Tax()),
		Total:        domain.Float(c.Total()),
		Form:         snap.Form,
		Errors:       snap.Errors,
		Failure:      snap.Failure,
		Confirmation: snap.Confirmation,
	}
}

func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusConflict, "empty_cart", checkout.MsgEmptyCart)
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, "submission_in_flight", "an order is already being placed")
	case errors.Is(err, checkout.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "unexpected", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
