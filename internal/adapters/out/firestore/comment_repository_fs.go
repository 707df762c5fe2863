// internal/adapters/out/firestore/comment_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fscommon "storefront/internal/adapters/out/firestore/common"
	commentdom "storefront/internal/domain/comment"
	"storefront/internal/domain/common"
)

const commentsCollection = "comments"

// ========================================
// Firestore implementation of comment.Repository
// ========================================
//
// ドキュメント ID は "<productId>__<userId>"。
// 1 ユーザー 1 商品 1 コメントの一意性は DocumentRef.Create で担保する。
type CommentRepositoryFS struct {
	Client *firestore.Client
}

func NewCommentRepositoryFS(client *firestore.Client) *CommentRepositoryFS {
	return &CommentRepositoryFS{Client: client}
}

var _ commentdom.Repository = (*CommentRepositoryFS)(nil)

type commentDoc struct {
	ProductID    string    `firestore:"productId"`
	UserID       string    `firestore:"userId"`
	Rating       int       `firestore:"rating"`
	Text         string    `firestore:"text"`
	Username     string    `firestore:"username"`
	ProductTitle string    `firestore:"productTitle"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func toCommentDoc(c commentdom.Comment) commentDoc {
	return commentDoc{
		ProductID:    c.ProductID,
		UserID:       c.UserID,
		Rating:       c.Rating,
		Text:         c.Text,
		Username:     c.Username,
		ProductTitle: c.ProductTitle,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func fromCommentDoc(id string, d commentDoc) commentdom.Comment {
	return commentdom.Comment{
		ID:           id,
		ProductID:    d.ProductID,
		UserID:       d.UserID,
		Rating:       d.Rating,
		Text:         d.Text,
		Username:     d.Username,
		ProductTitle: d.ProductTitle,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *CommentRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(commentsCollection)
}

// ========================================
// GetByID
// ========================================
func (r *CommentRepositoryFS) GetByID(ctx context.Context, id string) (commentdom.Comment, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return commentdom.Comment{}, commentdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if fscommon.IsNotFound(err) {
			return commentdom.Comment{}, commentdom.ErrNotFound
		}
		return commentdom.Comment{}, fmt.Errorf("comments.GetByID: %w", err)
	}
	var d commentDoc
	if err := snap.DataTo(&d); err != nil {
		return commentdom.Comment{}, fmt.Errorf("comments.GetByID decode: %w", err)
	}
	return fromCommentDoc(snap.Ref.ID, d), nil
}

// ========================================
// List (newest first)
// ========================================
func (r *CommentRepositoryFS) List(ctx context.Context, f commentdom.Filter, page common.Page) (common.PageResult[commentdom.Comment], error) {
	q := r.col().Query
	if f.ProductID != "" {
		q = q.Where("productId", "==", f.ProductID)
	}

	total, err := fscommon.CountQuery(ctx, q)
	if err != nil {
		return common.PageResult[commentdom.Comment]{}, fmt.Errorf("comments.List count: %w", err)
	}

	_, limit, offset := common.NormalizePage(page)
	it := q.OrderBy("createdAt", firestore.Desc).Offset(offset).Limit(limit).Documents(ctx)
	defer it.Stop()

	items := make([]commentdom.Comment, 0, limit)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return common.PageResult[commentdom.Comment]{}, fmt.Errorf("comments.List: %w", err)
		}
		var d commentDoc
		if err := snap.DataTo(&d); err != nil {
			return common.PageResult[commentdom.Comment]{}, fmt.Errorf("comments.List decode: %w", err)
		}
		items = append(items, fromCommentDoc(snap.Ref.ID, d))
	}
	return common.NewPageResult(items, total, page), nil
}

// ========================================
// Create
// ========================================
func (r *CommentRepositoryFS) Create(ctx context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	c.ID = fscommon.CompositeID(c.ProductID, c.UserID)
	if _, err := r.col().Doc(c.ID).Create(ctx, toCommentDoc(c)); err != nil {
		if fscommon.IsAlreadyExists(err) {
			return commentdom.Comment{}, commentdom.ErrAlreadyReviewed
		}
		return commentdom.Comment{}, fmt.Errorf("comments.Create: %w", err)
	}
	return c, nil
}

// ========================================
// Save (rating / text / updatedAt only)
// ========================================
func (r *CommentRepositoryFS) Save(ctx context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	_, err := r.col().Doc(c.ID).Update(ctx, []firestore.Update{
		{Path: "rating", Value: c.Rating},
		{Path: "text", Value: c.Text},
		{Path: "updatedAt", Value: c.UpdatedAt.UTC()},
	})
	if err != nil {
		if fscommon.IsNotFound(err) {
			return commentdom.Comment{}, commentdom.ErrNotFound
		}
		return commentdom.Comment{}, fmt.Errorf("comments.Save: %w", err)
	}
	return r.GetByID(ctx, c.ID)
}

// ========================================
// Delete
// ========================================
func (r *CommentRepositoryFS) Delete(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if fscommon.IsNotFound(err) {
			return commentdom.ErrNotFound
		}
		return fmt.Errorf("comments.Delete: %w", err)
	}
	return nil
}

// DeleteByProduct は商品削除時に呼ばれる。PG の ON DELETE CASCADE 相当。
func (r *CommentRepositoryFS) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := fscommon.DeleteWhere(ctx, r.Client, r.col().Where("productId", "==", productID)); err != nil {
		return fmt.Errorf("comments.DeleteByProduct: %w", err)
	}
	return nil
}
