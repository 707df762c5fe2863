// internal/application/usecase/product_usecase.go
package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/apperr"
	categorydom "storefront/internal/domain/category"
	commentdom "storefront/internal/domain/comment"
	"storefront/internal/domain/common"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

var ErrImageStoreNotConfigured = apperr.New(apperr.KindUnavailable, "Image storage is not configured.")

// ProductUsecase is the product catalog. Reads are public for active
// products; writes are staff only.
type ProductUsecase struct {
	tx         TxManager
	products   productdom.Repository
	categories categorydom.Repository
	comments   commentdom.Repository
	images     productdom.ImageStore
	clock      Clock
	ids        IDGenerator
}

func NewProductUsecase(
	tx TxManager,
	products productdom.Repository,
	categories categorydom.Repository,
	comments commentdom.Repository,
	images productdom.ImageStore,
) *ProductUsecase {
	return &ProductUsecase{
		tx:         tx,
		products:   products,
		categories: categories,
		comments:   comments,
		images:     images,
		clock:      systemClock{},
		ids:        newID,
	}
}

// ProductInput is the full write model (create / PUT).
type ProductInput struct {
	CategoryID  string
	Title       string
	Description string
	Slug        string
	Price       decimal.Decimal
	Stock       int
	IsActive    *bool // nil means true
}

func (in ProductInput) toPatch() productdom.Patch {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return productdom.Patch{
		CategoryID:  &in.CategoryID,
		Title:       &in.Title,
		Description: &in.Description,
		Slug:        &in.Slug,
		Price:       &in.Price,
		Stock:       &in.Stock,
		IsActive:    &active,
	}
}

// List applies f. Non-staff callers only ever see active products.
func (uc *ProductUsecase) List(ctx context.Context, actor permission.Actor, f productdom.Filter, page common.Page) (common.PageResult[productdom.Product], error) {
	if !actor.IsStaff {
		active := true
		f.IsActive = &active
	}
	return uc.products.List(ctx, f, page)
}

func (uc *ProductUsecase) Get(ctx context.Context, actor permission.Actor, id string) (productdom.Product, error) {
	p, err := uc.products.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	if !permission.Allowed(actor, permission.Read, permission.Catalog(p.IsActive)) {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (uc *ProductUsecase) Create(ctx context.Context, actor permission.Actor, in ProductInput) (productdom.Product, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return productdom.Product{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	p, err := productdom.New(uc.ids(), in.CategoryID, in.Title, in.Description, in.Slug, in.Price, in.Stock, active, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}
	c, err := uc.requireCategory(ctx, p.CategoryID)
	if err != nil {
		return productdom.Product{}, err
	}
	p.CategoryTitle = c.Title
	return uc.products.Create(ctx, p)
}

// Update replaces every writable field.
func (uc *ProductUsecase) Update(ctx context.Context, actor permission.Actor, id string, in ProductInput) (productdom.Product, error) {
	return uc.Patch(ctx, actor, id, in.toPatch())
}

func (uc *ProductUsecase) Patch(ctx context.Context, actor permission.Actor, id string, patch productdom.Patch) (productdom.Product, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return productdom.Product{}, err
	}
	var out productdom.Product
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := uc.lockProduct(ctx, id)
		if err != nil {
			return err
		}
		next, err := cur.Apply(patch, uc.clock.Now())
		if err != nil {
			return err
		}
		if next.CategoryID != cur.CategoryID {
			c, err := uc.requireCategory(ctx, next.CategoryID)
			if err != nil {
				return err
			}
			next.CategoryTitle = c.Title
		}
		out, err = uc.products.Save(ctx, next)
		return err
	})
	return out, err
}

// Delete removes the product. Cart lines go with it, order lines keep
// their frozen price with the product reference cleared.
func (uc *ProductUsecase) Delete(ctx context.Context, actor permission.Actor, id string) error {
	if err := permission.RequireStaff(actor); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}
	// comments may live outside the SQL transaction (Firestore backend)
	if uc.comments != nil {
		if cErr := uc.comments.DeleteByProduct(ctx, id); cErr != nil {
			log.Printf("[product_uc] WARN: delete comments product=%s err=%v", id, cErr)
		}
	}
	if p.ImageURL != "" && uc.images != nil {
		if iErr := uc.images.Delete(ctx, p.ImageURL); iErr != nil {
			log.Printf("[product_uc] WARN: delete image product=%s url=%s err=%v", id, p.ImageURL, iErr)
		}
	}
	return nil
}

// UploadImage stores a png/jpg/jpeg image and points the product at it.
func (uc *ProductUsecase) UploadImage(ctx context.Context, actor permission.Actor, id, filename string, size int64, r io.Reader) (productdom.Product, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return productdom.Product{}, err
	}
	if uc.images == nil {
		return productdom.Product{}, ErrImageStoreNotConfigured
	}
	ext, contentType, err := productdom.ValidateImage(filename, size)
	if err != nil {
		return productdom.Product{}, err
	}
	p, err := uc.products.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}

	// upload outside the transaction; the row is re-read under lock afterwards
	url, err := uc.images.Put(ctx, p.ID, ext, contentType, io.LimitReader(r, productdom.MaxImageSize+1))
	if err != nil {
		return productdom.Product{}, err
	}
	var saved productdom.Product
	var old string
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := uc.lockProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		old = cur.ImageURL
		cur.ImageURL = url
		cur.UpdatedAt = uc.clock.Now()
		saved, err = uc.products.Save(ctx, cur)
		return err
	})
	if err != nil {
		if dErr := uc.images.Delete(ctx, url); dErr != nil {
			log.Printf("[product_uc] WARN: delete orphan image product=%s url=%s err=%v", p.ID, url, dErr)
		}
		return productdom.Product{}, err
	}
	if old != "" && old != url {
		if dErr := uc.images.Delete(ctx, old); dErr != nil {
			log.Printf("[product_uc] WARN: delete old image product=%s url=%s err=%v", p.ID, old, dErr)
		}
	}
	return saved, nil
}

// lockProduct reads id with a row lock so that a concurrent checkout's
// stock decrement is never written back over. Must run inside WithinTx.
func (uc *ProductUsecase) lockProduct(ctx context.Context, id string) (productdom.Product, error) {
	rows, err := uc.products.LockForUpdate(ctx, []string{strings.TrimSpace(id)})
	if err != nil {
		return productdom.Product{}, err
	}
	if len(rows) == 0 {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return rows[0], nil
}

func (uc *ProductUsecase) requireCategory(ctx context.Context, id string) (categorydom.Category, error) {
	c, err := uc.categories.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return categorydom.Category{}, categorydom.ErrCategoryGone
	}
	return c, err
}
