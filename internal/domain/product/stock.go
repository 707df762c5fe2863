package product

import (
	"fmt"

	"storefront/internal/domain/apperr"
)

// CheckStock validates a requested quantity against p's current stock.
// Callers must hold a lock on p when the result gates a decrement.
func CheckStock(p Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > p.Stock {
		return apperr.Wrap("product.CheckStock", apperr.KindInsufficientStock,
			fmt.Sprintf("Only %d item(s) left in stock.", p.Stock), ErrInsufficientStock)
	}
	return nil
}
