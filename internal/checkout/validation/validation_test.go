package validation

import (
	"reflect"
	"testing"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

func TestValidate(t *testing.T) {
	item := domain.CartLine{ID: "7L", Name: "Pizza", Price: 10, Quantity: 1}

	tests := []struct {
		name  string
		draft domain.OrderDraft
		want  []string
	}{
		{
			name: "valid delivery",
			draft: domain.OrderDraft{
				Customer: "Ahmed", Phone: "0555", Address: "A",
				Items: []domain.CartLine{item}, Total: 5, OrderType: domain.OrderTypeDelivery,
			},
			want: nil,
		},
		{
			name: "missing customer name",
			draft: domain.OrderDraft{
				Customer: "", Phone: "x", Address: "A",
				Items: []domain.CartLine{item}, Total: 5, OrderType: domain.OrderTypeDelivery,
			},
			want: []string{MsgCustomerRequired},
		},
		{
			name: "dine in without table",
			draft: domain.OrderDraft{
				Customer: "Ahmed", Phone: "0555",
				Items: []domain.CartLine{item}, Total: 5, OrderType: domain.OrderTypeDineIn, TableNumber: "",
			},
			want: []string{MsgTableRequired},
		},
		{
			name: "whitespace only fields",
			draft: domain.OrderDraft{
				Customer: "  ", Phone: "\t", Address: " ",
				Items: []domain.CartLine{item}, Total: 5, OrderType: domain.OrderTypeDelivery,
			},
			want: []string{MsgCustomerRequired, MsgPhoneRequired, MsgAddressRequired},
		},
		{
			name:  "everything wrong is reported at once",
			draft: domain.OrderDraft{OrderType: domain.OrderTypeDineIn},
			want:  []string{MsgCustomerRequired, MsgPhoneRequired, MsgItemsRequired, MsgTotalPositive, MsgTableRequired},
		},
		{
			name: "takeaway needs neither address nor table",
			draft: domain.OrderDraft{
				Customer: "Ahmed", Phone: "0555",
				Items: []domain.CartLine{item}, Total: 11, OrderType: domain.OrderTypeTakeaway,
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.draft)
			if got.Valid != (len(tt.want) == 0) {
				t.Errorf("Valid = %v, want %v", got.Valid, len(tt.want) == 0)
			}
			if !reflect.DeepEqual(got.Errors, tt.want) {
				t.Errorf("Errors = %q, want %q", got.Errors, tt.want)
			}
		})
	}
}

func TestResultError(t *testing.T) {
	r := Result{Errors: []string{MsgCustomerRequired, MsgPhoneRequired}}
	if got := r.Error(); got != "Customer name is required, Phone number is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidateOffline(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.OfflineOrderDraft
		want  []string
	}{
		{
			name:  "empty",
			draft: domain.OfflineOrderDraft{TableNumber: " "},
			want:  []string{MsgOfflineTable, MsgItemsRequired, MsgTotalPositive},
		},
		{
			name: "valid",
			draft: domain.OfflineOrderDraft{
				TableNumber: "3", Items: []domain.CartLine{{ID: "7", Price: 10, Quantity: 2}}, Total: 22,
			},
			want: nil,
		},
		{
			name: "bad lines with a positive total",
			draft: domain.OfflineOrderDraft{
				TableNumber: "3",
				Items: []domain.CartLine{
					{ID: "1", Price: 10, Quantity: 2},
					{ID: "2", Price: 5, Quantity: -1},
					{ID: "3", Price: -2, Quantity: 0},
				},
				Total: 16.5,
			},
			want: []string{MsgItemQuantity, MsgItemPrice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateOffline(tt.draft)
			if got.Valid != (len(tt.want) == 0) || !reflect.DeepEqual(got.Errors, tt.want) {
				t.Errorf("ValidateOffline() = %+v, want errors %q", got, tt.want)
			}
		})
	}
}
