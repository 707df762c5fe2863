package cart

import "context"

// Repository is a persistence port for Cart.
//
// All mutating calls are expected to run inside a transaction opened by the
// caller; GetOrCreate with forUpdate=true holds the cart row lock until
// that transaction ends, which serializes concurrent mutations per user.
type Repository interface {
	// GetOrCreate returns the user's cart with its lines (product title and
	// current price joined), creating an empty cart on first use.
	GetOrCreate(ctx context.Context, userID string, forUpdate bool) (Cart, error)

	InsertLine(ctx context.Context, l Line) (Line, error)
	UpdateLineQuantity(ctx context.Context, cartID, lineID string, qty int) error
	// DeleteLine returns ErrLineNotFound when no line matched.
	DeleteLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}
