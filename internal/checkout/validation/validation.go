package validation

import (
	"strings"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

const (
	MsgCustomerRequired = "Customer name is required"
	MsgPhoneRequired    = "Phone number is required"
	MsgItemsRequired    = "Order must contain at least one item"
	MsgTotalPositive    = "Order total must be greater than zero"
	MsgAddressRequired  = "Delivery address is required for delivery orders"
	MsgTableRequired    = "Table number is required for dine-in orders"
	MsgOfflineTable     = "Table number is required for offline orders"
	MsgItemQuantity     = "Item quantity must be at least 1"
	MsgItemPrice        = "Item price must not be negative"
)

// Result collects every rule violation of a draft.
type Result struct {
	Valid  bool
	Errors []string
}

// Error joins the messages the way they are shown to the customer.
func (r Result) Error() string {
	return strings.Join(r.Errors, ", ")
}

// Validate checks draft against the checkout rules. Every rule is evaluated;
// nothing short-circuits.
func Validate(draft domain.OrderDraft) Result {
	var errs []string

	if blank(draft.Customer) {
		errs = append(errs, MsgCustomerRequired)
	}
	if blank(draft.Phone) {
		errs = append(errs, MsgPhoneRequired)
	}
	if len(draft.Items) == 0 {
		errs = append(errs, MsgItemsRequired)
	}
	errs = append(errs, lineErrors(draft.Items)...)
	if draft.Total <= 0 {
		errs = append(errs, MsgTotalPositive)
	}

	switch draft.OrderType {
	case domain.OrderTypeDelivery:
		if blank(draft.Address) {
			errs = append(errs, MsgAddressRequired)
		}
	case domain.OrderTypeDineIn:
		if blank(draft.TableNumber) {
			errs = append(errs, MsgTableRequired)
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateOffline checks a staff-entered order.
func ValidateOffline(draft domain.OfflineOrderDraft) Result {
	var errs []string

	if blank(draft.TableNumber) {
		errs = append(errs, MsgOfflineTable)
	}
	if len(draft.Items) == 0 {
		errs = append(errs, MsgItemsRequired)
	}
	errs = append(errs, lineErrors(draft.Items)...)
	if draft.Total <= 0 {
		errs = append(errs, MsgTotalPositive)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// lineErrors reports each broken line rule once, however many lines break it.
func lineErrors(items []domain.CartLine) []string {
	var badQty, badPrice bool
	for _, l := range items {
		badQty = badQty || l.Quantity < 1
		badPrice = badPrice || l.Price < 0
	}

	var errs []string
	if badQty {
		errs = append(errs, MsgItemQuantity)
	}
	if badPrice {
		errs = append(errs, MsgItemPrice)
	}
	return errs
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
