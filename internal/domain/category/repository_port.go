package category

import (
	"context"

	"storefront/internal/domain/common"
)

type Filter struct {
	ActiveOnly bool
}

type Repository interface {
	GetByID(ctx context.Context, id string) (Category, error)
	List(ctx context.Context, f Filter, page common.Page) (common.PageResult[Category], error)
	Create(ctx context.Context, c Category) (Category, error)
	Save(ctx context.Context, c Category) (Category, error)
	// Delete fails with ErrHasProducts while products still reference the row.
	Delete(ctx context.Context, id string) error
}
