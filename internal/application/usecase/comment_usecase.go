// internal/application/usecase/comment_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/apperr"
	commentdom "storefront/internal/domain/comment"
	"storefront/internal/domain/common"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

// CommentUsecase manages product reviews. Anyone reads, authenticated users
// write, only the author edits or deletes.
type CommentUsecase struct {
	comments commentdom.Repository
	products productdom.Repository
	clock    Clock
	ids      IDGenerator
}

func NewCommentUsecase(comments commentdom.Repository, products productdom.Repository) *CommentUsecase {
	return &CommentUsecase{comments: comments, products: products, clock: systemClock{}, ids: newID}
}

func (uc *CommentUsecase) List(ctx context.Context, f commentdom.Filter, page common.Page) (common.PageResult[commentdom.Comment], error) {
	f.ProductID = strings.TrimSpace(f.ProductID)
	return uc.comments.List(ctx, f, page)
}

func (uc *CommentUsecase) Get(ctx context.Context, id string) (commentdom.Comment, error) {
	return uc.comments.GetByID(ctx, strings.TrimSpace(id))
}

func (uc *CommentUsecase) Create(ctx context.Context, actor permission.Actor, productID string, rating int, text string) (commentdom.Comment, error) {
	if err := permission.Check(actor, permission.Write, permission.Comment("")); err != nil {
		return commentdom.Comment{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return commentdom.Comment{}, apperr.Validation("product", "This field is required.")
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return commentdom.Comment{}, apperr.Validation("product", `Invalid pk "`+productID+`" - object does not exist.`)
		}
		return commentdom.Comment{}, err
	}

	c, err := commentdom.New(uc.ids(), p.ID, actor.UserID, rating, text, uc.clock.Now())
	if err != nil {
		return commentdom.Comment{}, err
	}
	c.Username = actor.Username
	c.ProductTitle = p.Title
	return uc.comments.Create(ctx, c)
}

func (uc *CommentUsecase) Patch(ctx context.Context, actor permission.Actor, id string, patch commentdom.Patch) (commentdom.Comment, error) {
	cur, err := uc.owned(ctx, actor, id)
	if err != nil {
		return commentdom.Comment{}, err
	}
	next, err := cur.Apply(patch, uc.clock.Now())
	if err != nil {
		return commentdom.Comment{}, err
	}
	return uc.comments.Save(ctx, next)
}

// Update replaces rating and text.
func (uc *CommentUsecase) Update(ctx context.Context, actor permission.Actor, id string, rating int, text string) (commentdom.Comment, error) {
	return uc.Patch(ctx, actor, id, commentdom.Patch{Rating: &rating, Text: &text})
}

func (uc *CommentUsecase) Delete(ctx context.Context, actor permission.Actor, id string) error {
	c, err := uc.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	return uc.comments.Delete(ctx, c.ID)
}

func (uc *CommentUsecase) owned(ctx context.Context, actor permission.Actor, id string) (commentdom.Comment, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return commentdom.Comment{}, err
	}
	c, err := uc.comments.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return commentdom.Comment{}, err
	}
	if err := permission.Check(actor, permission.Owner, permission.Comment(c.UserID)); err != nil {
		return commentdom.Comment{}, err
	}
	return c, nil
}
