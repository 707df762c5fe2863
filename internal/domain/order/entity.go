// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/apperr"
)

// ========================================
// Entity
// ========================================

// PaymentMethodMock is the only payment method.
const PaymentMethodMock = "mock"

type Order struct {
	ID            string
	UserID        string
	Address       Address
	Status        Status
	PaymentMethod string
	Total         decimal.Decimal
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Username is filled on read.
	Username string
}

// Item is an order line. Price is frozen at order time; ProductID becomes
// nil when the product is deleted later.
type Item struct {
	ID        string
	OrderID   string
	ProductID *string
	Quantity  int
	Price     decimal.Decimal

	// Product is the current product summary, nil once detached.
	Product *ItemProduct
}

type ItemProduct struct {
	ID            string
	Title         string
	Price         decimal.Decimal
	ImageURL      string
	CategoryTitle string
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ========================================
// Errors
// ========================================

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "Order not found")
	ErrNotPending        = apperr.New(apperr.KindInvalidState, "Payment already processed or order not pending")
	ErrNoItems           = apperr.New(apperr.KindEmptyOrder, "Please select at least one item for payment")
	ErrInvalidTransition = apperr.New(apperr.KindInvalidState, "order: invalid status transition")
)

// ========================================
// Constructors
// ========================================

// New builds a pending order header without items. Items and the total are
// added by the checkout flow.
func New(id, userID string, addr Address, now time.Time) (Order, error) {
	o := Order{
		ID:            strings.TrimSpace(id),
		UserID:        strings.TrimSpace(userID),
		Address:       addr.normalize(),
		Status:        StatusPending,
		PaymentMethod: PaymentMethodMock,
		Total:         decimal.Zero,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if o.ID == "" {
		return Order{}, apperr.Validation("id", "id is required")
	}
	if o.UserID == "" {
		return Order{}, apperr.Validation("user", "This field is required.")
	}
	if err := o.Address.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// NewItem freezes price for one line.
func NewItem(id, orderID, productID string, qty int, price decimal.Decimal) Item {
	pid := productID
	return Item{
		ID:        id,
		OrderID:   orderID,
		ProductID: &pid,
		Quantity:  qty,
		Price:     price,
	}
}

// ComputeTotal is Σ quantity × frozen price.
func (o Order) ComputeTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// TransitionTo moves the order along the status machine.
func (o *Order) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return apperr.Wrap("order.TransitionTo", apperr.KindInvalidState,
			"Cannot change order status from "+string(o.Status)+" to "+string(to)+".", ErrInvalidTransition)
	}
	o.Status = to
	o.UpdatedAt = now.UTC()
	return nil
}

const OrdersTableDDL = `
CREATE TABLE IF NOT EXISTS orders (
  id             TEXT PRIMARY KEY,
  user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  full_name      VARCHAR(120) NOT NULL,
  email          VARCHAR(254) NOT NULL,
  phone_number   VARCHAR(20)  NOT NULL,
  address_line_1 VARCHAR(255) NOT NULL,
  address_line_2 VARCHAR(255) NOT NULL DEFAULT '',
  city           VARCHAR(100) NOT NULL,
  district       VARCHAR(100) NOT NULL,
  postal_code    VARCHAR(20)  NOT NULL,
  country        VARCHAR(50)  NOT NULL,
  status         VARCHAR(20)  NOT NULL DEFAULT 'pending',
  payment_method VARCHAR(20)  NOT NULL DEFAULT 'mock',
  order_total    NUMERIC(12,2) NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL,
  updated_at     TIMESTAMPTZ NOT NULL,
  CONSTRAINT chk_orders_status CHECK (status IN ('pending','processing','shipped','delivered','canceled'))
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id    ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
  id         TEXT PRIMARY KEY,
  order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT REFERENCES products(id) ON DELETE SET NULL,
  quantity   INTEGER NOT NULL CHECK (quantity >= 1),
  price      NUMERIC(10,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`
