package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CartLine is one distinct purchasable entry in the cart, keyed by item and size.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

// LineID builds the cart identity key for a menu item in a given size,
// so "7" in size "L" becomes "7L".
func LineID(itemID, size string) string {
	return itemID + size
}

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
)

// OrderDraft is the assembled order awaiting validation and submission.
type OrderDraft struct {
	Customer    string
	Phone       string
	Address     string
	Items       []CartLine
	Total       float64
	OrderType   OrderType
	TableNumber string
}

// OfflineOrderDraft is a staff-entered order. It carries no customer identity.
type OfflineOrderDraft struct {
	TableNumber string
	Items       []CartLine
	Total       float64
	Notes       string
}

// SecurityToken is the short-lived anti-automation token issued by the backend.
// Timestamp is in epoch seconds on the server clock.
type SecurityToken struct {
	Timestamp float64 `json:"timestamp"`
	Nonce     string  `json:"nonce"`
	Signature string  `json:"signature"`
}

// Complete reports whether every token field was populated.
func (t SecurityToken) Complete() bool {
	return t.Timestamp > 0 && t.Nonce != "" && t.Signature != ""
}

type OrderConfirmation struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type OfflineConfirmation struct {
	OrderID     string  `json:"order_id"`
	TableNumber string  `json:"table_number"`
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
}

type TableState struct {
	Exists     bool `json:"exists"`
	IsOccupied bool `json:"is_occupied"`
}

type MenuItemSize struct {
	ID    int    `json:"id"`
	Size  string `json:"size"`
	Price Price  `json:"price"`
}

type MenuItem struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Price       Price          `json:"price"`
	Category    string         `json:"category"`
	Image       string         `json:"image,omitempty"`
	Featured    bool           `json:"featured,omitempty"`
	Sizes       []MenuItemSize `json:"sizes,omitempty"`
}

// PriceFor returns the price of the item in the given size, falling back to the
// base price when the size is unknown or empty.
func (m MenuItem) PriceFor(size string) float64 {
	for _, s := range m.Sizes {
		if s.Size == size {
			return float64(s.Price)
		}
	}
	return float64(m.Price)
}

// Price decodes a JSON number or a numeric string, as the menu endpoint
// serialises decimals both ways.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price %s: %w", string(b), err)
	}
	*p = Price(v)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(p))
}
