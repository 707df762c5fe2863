// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/apperr"
)

var (
	ErrLineNotFound = apperr.New(apperr.KindNotFound, "Cart item not found")
	ErrEmpty        = apperr.New(apperr.KindEmptyCart, "Your cart is empty.")
)

// DefaultQuantity is used when an add request omits quantity.
const DefaultQuantity = 1

// Line is one product in a cart. (CartID, ProductID) is unique.
type Line struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time

	// product summary, filled on read
	ProductTitle string
	UnitPrice    decimal.Decimal
}

// ItemTotal is quantity × the product's current price.
func (l Line) ItemTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is created lazily, one per user, and never deleted.
type Cart struct {
	ID        string
	UserID    string
	Lines     []Line
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Total sums ItemTotal over all lines.
func (c Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.ItemTotal())
	}
	return sum
}

func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Line returns the line with id.
func (c Cart) Line(id string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// LineForProduct returns the line holding productID.
func (c Cart) LineForProduct(productID string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// ProductIDs lists the distinct products in the cart.
func (c Cart) ProductIDs() []string {
	out := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, l.ProductID)
	}
	return out
}

// ValidateAddQuantity applies the add rule (quantity >= 1).
func ValidateAddQuantity(q int) error {
	if q < 1 {
		return &apperr.Error{Kind: apperr.KindInvalidQuantity, Field: "quantity", Message: "Ensure this value is greater than or equal to 1."}
	}
	return nil
}

// ValidateUpdateQuantity applies the update rule (quantity >= 0, 0 removes).
func ValidateUpdateQuantity(q int) error {
	if q < 0 {
		return &apperr.Error{Kind: apperr.KindInvalidQuantity, Field: "quantity", Message: "Ensure this value is greater than or equal to 0."}
	}
	return nil
}

const CartsTableDDL = `
CREATE TABLE IF NOT EXISTS carts (
  id         TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_items (
  id         TEXT PRIMARY KEY,
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity   INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (cart_id, product_id)
);
`
