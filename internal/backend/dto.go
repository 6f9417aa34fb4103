package backend

import (
	"encoding/json"
	"strings"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

// ID accepts either a JSON string or number, since the backend serialises
// primary keys as integers while some endpoints return strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type securityTokenResponse struct {
	Success       bool                  `json:"success"`
	SecurityToken *domain.SecurityToken `json:"security_token"`
}

type PublicOrderRequest struct {
	Customer      string                `json:"customer"`
	Phone         string                `json:"phone"`
	Address       string                `json:"address"`
	Items         []domain.CartLine     `json:"items"`
	Total         float64               `json:"total"`
	OrderType     domain.OrderType      `json:"orderType"`
	TableNumber   *string               `json:"tableNumber"`
	SecurityToken *domain.SecurityToken `json:"security_token,omitempty"`
}

type PublicOrder struct {
	ID          ID           `json:"id"`
	Customer    string       `json:"customer"`
	Phone       string       `json:"phone"`
	Address     string       `json:"address"`
	Items       []string     `json:"items"`
	Total       domain.Price `json:"total"`
	Status      string       `json:"status"`
	OrderType   string       `json:"orderType"`
	TableNumber ID           `json:"tableNumber,omitempty"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
}

type PublicOrderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   PublicOrder `json:"order"`
}

type OfflineOrderRequest struct {
	TableNumber string            `json:"table_number"`
	Items       []domain.CartLine `json:"items"`
	Total       float64           `json:"total"`
	Notes       string            `json:"notes"`
}

type OfflineOrderItem struct {
	ID   ID `json:"id"`
	Item struct {
		ID   ID     `json:"id"`
		Name string `json:"name"`
	} `json:"item"`
	Size *struct {
		ID   ID     `json:"id"`
		Size string `json:"size"`
	} `json:"size"`
	Quantity int          `json:"quantity"`
	Price    domain.Price `json:"price"`
}

type OfflineOrder struct {
	ID    ID `json:"id"`
	Table struct {
		ID     ID `json:"id"`
		Number ID `json:"number"`
	} `json:"table"`
	Total     domain.Price       `json:"total"`
	Status    string             `json:"status"`
	Items     []OfflineOrderItem `json:"items"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type OfflineOrderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   OfflineOrder `json:"order"`
}
