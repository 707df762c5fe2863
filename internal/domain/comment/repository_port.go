package comment

import (
	"context"

	"storefront/internal/domain/common"
)

type Filter struct {
	ProductID string
}

// Repository lists newest first. Create returns ErrAlreadyReviewed when the
// author already has a comment on the product.
type Repository interface {
	GetByID(ctx context.Context, id string) (Comment, error)
	List(ctx context.Context, f Filter, page common.Page) (common.PageResult[Comment], error)
	Create(ctx context.Context, c Comment) (Comment, error)
	Save(ctx context.Context, c Comment) (Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
