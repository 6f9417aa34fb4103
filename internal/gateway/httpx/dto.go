package httpx

import (
	"github.com/jcmexdev/restaurant-checkout/internal/checkout"
	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

type CreateSessionRequest struct {
	TableNumber string `json:"table_number"`
}

type CreateSessionResponse struct {
	SessionID   string            `json:"session_id,omitempty"`
	Outcome     string            `json:"outcome"`
	Message     string            `json:"message,omitempty"`
	TableNumber string            `json:"table_number,omitempty"`
	Menu        []domain.MenuItem `json:"menu,omitempty"`
}

type AddItemRequest struct {
	ItemID   string   `json:"item_id"`
	Size     string   `json:"size,omitempty"`
	Name     string   `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Image    string   `json:"image,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type EventRequest struct {
	Type string `json:"type"`
}

type SubmitRequest struct {
	Customer string `json:"customer"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
}

type SessionResponse struct {
	ID           string                    `json:"id"`
	State        checkout.State            `json:"state"`
	Origin       checkout.State            `json:"origin,omitempty"`
	TableNumber  string                    `json:"table_number,omitempty"`
	Lines        []domain.CartLine         `json:"lines"`
	Subtotal     float64                   `json:"subtotal"`
	Tax          float64                   `json:"tax"`
	Total        float64                   `json:"total"`
	Form         checkout.Form             `json:"form"`
	Errors       []string                  `json:"errors,omitempty"`
	Failure      string                    `json:"failure,omitempty"`
	Confirmation *domain.OrderConfirmation `json:"confirmation,omitempty"`
}

type OfflineOrderRequest struct {
	TableNumber string            `json:"table_number"`
	Items       []domain.CartLine `json:"items"`
	Notes       string            `json:"notes,omitempty"`
}

type JournalEntryResponse struct {
	Event   string `json:"event"`
	From    string `json:"from"`
	To      string `json:"to"`
	Detail  string `json:"detail,omitempty"`
	Errors  string `json:"errors"`
	TraceID string `json:"trace_id,omitempty"`
	At      string `json:"at"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
