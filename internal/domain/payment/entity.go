// internal/domain/payment/entity.go
package payment

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain/order"
)

const (
	StatusSuccess  = "success"
	successMessage = "Payment completed successfully"
)

// Receipt is the result of a mock payment.
type Receipt struct {
	Status    string
	PaymentID string
	OrderID   string
	Amount    decimal.Decimal
	Method    string
	Message   string
}

// PaymentID derives the synthetic gateway reference from the order id.
func PaymentID(orderID string) string { return "MOCK-" + orderID }

// NewReceipt builds the success receipt for o. Amount is recomputed from
// the frozen line prices.
func NewReceipt(o order.Order) Receipt {
	return Receipt{
		Status:    StatusSuccess,
		PaymentID: PaymentID(o.ID),
		OrderID:   o.ID,
		Amount:    o.ComputeTotal(),
		Method:    order.PaymentMethodMock,
		Message:   successMessage,
	}
}
