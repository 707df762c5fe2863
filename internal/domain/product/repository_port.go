package product

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/common"
)

type Filter struct {
	CategoryID string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string // title / description, case-insensitive
	IsActive   *bool
}

type Repository interface {
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, f Filter, page common.Page) (common.PageResult[Product], error)
	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) (Product, error)
	// Delete cascades cart lines and detaches order lines.
	Delete(ctx context.Context, id string) error

	// CountByCategory backs the restrict rule on category deletion.
	CountByCategory(ctx context.Context, categoryID string) (int, error)

	// LockForUpdate locks every row in ids, in ascending id order, for the
	// rest of the caller's transaction. Missing ids are skipped.
	LockForUpdate(ctx context.Context, ids []string) ([]Product, error)

	// DecreaseStock subtracts qty only when stock >= qty, otherwise it
	// returns ErrInsufficientStock and changes nothing.
	DecreaseStock(ctx context.Context, id string, qty int) error
}

// ImageStore keeps uploaded product images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, productID, ext, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
