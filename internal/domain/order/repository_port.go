package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

// Filter narrows List. An empty UserID lists every order (admin view).
type Filter struct {
	UserID string
}

// Repository lists newest first.
type Repository interface {
	GetByID(ctx context.Context, id string) (Order, error)
	// GetForUpdate locks the order row until the caller's transaction ends.
	GetForUpdate(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, f Filter, page common.Page) (common.PageResult[Order], error)

	// Create inserts the header only.
	Create(ctx context.Context, o Order) (Order, error)
	AddItem(ctx context.Context, it Item) (Item, error)
	SetTotal(ctx context.Context, id string, total decimal.Decimal, now time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status, now time.Time) error
}

// Notifier is told about committed orders. Failures never roll back.
type Notifier interface {
	OrderPlaced(ctx context.Context, o Order) error
}
