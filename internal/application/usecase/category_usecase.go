// internal/application/usecase/category_usecase.go
package usecase

import (
	"context"
	"strings"

	categorydom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

type CategoryUsecase struct {
	categories categorydom.Repository
	products   productdom.Repository
	clock      Clock
	ids        IDGenerator
}

func NewCategoryUsecase(categories categorydom.Repository, products productdom.Repository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories, products: products, clock: systemClock{}, ids: newID}
}

// CategoryDetail is a category with the products visible to the caller.
type CategoryDetail struct {
	Category categorydom.Category
	Products []productdom.Product
}

type CategoryInput struct {
	Title       string
	Slug        string
	Description string
	IsActive    *bool
}

func (uc *CategoryUsecase) List(ctx context.Context, actor permission.Actor, page common.Page) (common.PageResult[categorydom.Category], error) {
	return uc.categories.List(ctx, categorydom.Filter{ActiveOnly: !actor.IsStaff}, page)
}

func (uc *CategoryUsecase) Get(ctx context.Context, actor permission.Actor, id string) (CategoryDetail, error) {
	c, err := uc.categories.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return CategoryDetail{}, err
	}
	if !permission.Allowed(actor, permission.Read, permission.Catalog(c.IsActive)) {
		return CategoryDetail{}, categorydom.ErrNotFound
	}

	f := productdom.Filter{CategoryID: c.ID}
	if !actor.IsStaff {
		active := true
		f.IsActive = &active
	}
	res, err := uc.products.List(ctx, f, common.Page{Number: 1, PerPage: common.MaxPerPage})
	if err != nil {
		return CategoryDetail{}, err
	}
	return CategoryDetail{Category: c, Products: res.Items}, nil
}

func (uc *CategoryUsecase) Create(ctx context.Context, actor permission.Actor, in CategoryInput) (categorydom.Category, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return categorydom.Category{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	c, err := categorydom.New(uc.ids(), in.Title, in.Slug, in.Description, active, uc.clock.Now())
	if err != nil {
		return categorydom.Category{}, err
	}
	return uc.categories.Create(ctx, c)
}

// Update replaces every writable field.
func (uc *CategoryUsecase) Update(ctx context.Context, actor permission.Actor, id string, in CategoryInput) (categorydom.Category, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return uc.Patch(ctx, actor, id, categorydom.Patch{
		Title:       &in.Title,
		Slug:        &in.Slug,
		Description: &in.Description,
		IsActive:    &active,
	})
}

func (uc *CategoryUsecase) Patch(ctx context.Context, actor permission.Actor, id string, p categorydom.Patch) (categorydom.Category, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return categorydom.Category{}, err
	}
	cur, err := uc.categories.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return categorydom.Category{}, err
	}
	next, err := cur.Apply(p, uc.clock.Now())
	if err != nil {
		return categorydom.Category{}, err
	}
	return uc.categories.Save(ctx, next)
}

// Delete refuses while products still belong to the category.
func (uc *CategoryUsecase) Delete(ctx context.Context, actor permission.Actor, id string) error {
	if err := permission.RequireStaff(actor); err != nil {
		return err
	}
	c, err := uc.categories.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, err := uc.products.CountByCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return categorydom.ErrHasProducts
	}
	return uc.categories.Delete(ctx, c.ID)
}
