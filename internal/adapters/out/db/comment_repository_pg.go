// internal/adapters/out/db/comment_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dbcommon "storefront/internal/adapters/out/db/common"
	commentdom "storefront/internal/domain/comment"
	"storefront/internal/domain/common"
)

type CommentRepositoryPG struct {
	DB *sql.DB
}

func NewCommentRepositoryPG(db *sql.DB) *CommentRepositoryPG {
	return &CommentRepositoryPG{DB: db}
}

const commentSelect = `
SELECT
  cm.id, cm.product_id, cm.user_id, cm.rating, cm.text, cm.created_at, cm.updated_at,
  u.username, p.title
FROM comments cm
JOIN users u    ON u.id = cm.user_id
JOIN products p ON p.id = cm.product_id`

func (r *CommentRepositoryPG) GetByID(ctx context.Context, id string) (commentdom.Comment, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	c, err := scanComment(run.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return commentdom.Comment{}, commentdom.ErrNotFound
		}
		return commentdom.Comment{}, err
	}
	return c, nil
}

func (r *CommentRepositoryPG) List(ctx context.Context, f commentdom.Filter, page common.Page) (common.PageResult[commentdom.Comment], error) {
	run := dbcommon.GetRunner(ctx, r.DB)

	where := []string{}
	args := []any{}
	if v := strings.TrimSpace(f.ProductID); v != "" {
		dbcommon.AppendCond(&where, &args, "cm.product_id = $%d", v)
	}
	whereSQL := dbcommon.WhereSQL(where)
	_, limit, offset := common.NormalizePage(page)

	total, err := dbcommon.QueryCount(ctx, run, "SELECT COUNT(*) FROM comments cm "+whereSQL, args...)
	if err != nil {
		return common.PageResult[commentdom.Comment]{}, err
	}

	q := fmt.Sprintf(`%s
%s
ORDER BY cm.created_at DESC, cm.id DESC
LIMIT $%d OFFSET $%d`, commentSelect, whereSQL, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := run.QueryContext(ctx, q, args...)
	if err != nil {
		return common.PageResult[commentdom.Comment]{}, err
	}
	defer rows.Close()

	items := make([]commentdom.Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return common.PageResult[commentdom.Comment]{}, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return common.PageResult[commentdom.Comment]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}

func (r *CommentRepositoryPG) Create(ctx context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	_, err := run.ExecContext(ctx, `
INSERT INTO comments (id, product_id, user_id, rating, text, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.ProductID, c.UserID, c.Rating, c.Text, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return commentdom.Comment{}, commentdom.ErrAlreadyReviewed
		}
		return commentdom.Comment{}, dbcommon.Translate("comment.Create", err)
	}
	return r.GetByID(ctx, c.ID)
}

func (r *CommentRepositoryPG) Save(ctx context.Context, c commentdom.Comment) (commentdom.Comment, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx,
		`UPDATE comments SET rating = $2, text = $3, updated_at = $4 WHERE id = $1`,
		c.ID, c.Rating, c.Text, c.UpdatedAt.UTC())
	if err != nil {
		return commentdom.Comment{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return commentdom.Comment{}, commentdom.ErrNotFound
	}
	return r.GetByID(ctx, c.ID)
}

func (r *CommentRepositoryPG) Delete(ctx context.Context, id string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return commentdom.ErrNotFound
	}
	return nil
}

// DeleteByProduct is normally a no-op here since the FK cascades.
func (r *CommentRepositoryPG) DeleteByProduct(ctx context.Context, productID string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	_, err := run.ExecContext(ctx, `DELETE FROM comments WHERE product_id = $1`, strings.TrimSpace(productID))
	return err
}

func scanComment(s dbcommon.RowScanner) (commentdom.Comment, error) {
	var c commentdom.Comment
	if err := s.Scan(
		&c.ID, &c.ProductID, &c.UserID, &c.Rating, &c.Text, &c.CreatedAt, &c.UpdatedAt,
		&c.Username, &c.ProductTitle,
	); err != nil {
		return commentdom.Comment{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
