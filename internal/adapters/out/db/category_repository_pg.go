// internal/adapters/out/db/category_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	dbcommon "storefront/internal/adapters/out/db/common"
	categorydom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
)

type CategoryRepositoryPG struct {
	DB *sql.DB
}

func NewCategoryRepositoryPG(db *sql.DB) *CategoryRepositoryPG {
	return &CategoryRepositoryPG{DB: db}
}

const categoryColumns = `id, title, slug, description, is_active, created_at, updated_at`

func (r *CategoryRepositoryPG) GetByID(ctx context.Context, id string) (categorydom.Category, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	c, err := scanCategory(run.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return categorydom.Category{}, categorydom.ErrNotFound
		}
		return categorydom.Category{}, err
	}
	return c, nil
}

func (r *CategoryRepositoryPG) List(ctx context.Context, f categorydom.Filter, page common.Page) (common.PageResult[categorydom.Category], error) {
	run := dbcommon.GetRunner(ctx, r.DB)

	where := []string{}
	if f.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	whereSQL := dbcommon.WhereSQL(where)

	_, limit, offset := common.NormalizePage(page)
	total, err := dbcommon.QueryCount(ctx, run, "SELECT COUNT(*) FROM categories "+whereSQL)
	if err != nil {
		return common.PageResult[categorydom.Category]{}, err
	}

	q := fmt.Sprintf(`SELECT %s FROM categories %s ORDER BY title ASC, id ASC LIMIT $1 OFFSET $2`, categoryColumns, whereSQL)
	rows, err := run.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return common.PageResult[categorydom.Category]{}, err
	}
	defer rows.Close()

	items := make([]categorydom.Category, 0, limit)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return common.PageResult[categorydom.Category]{}, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return common.PageResult[categorydom.Category]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}

func (r *CategoryRepositoryPG) Create(ctx context.Context, c categorydom.Category) (categorydom.Category, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO categories (id, title, slug, description, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + categoryColumns
	out, err := scanCategory(run.QueryRowContext(ctx, q,
		c.ID, c.Title, c.Slug, c.Description, c.IsActive, c.CreatedAt.UTC(), c.UpdatedAt.UTC()))
	if err != nil {
		return categorydom.Category{}, categoryUniqueErr(err)
	}
	return out, nil
}

func (r *CategoryRepositoryPG) Save(ctx context.Context, c categorydom.Category) (categorydom.Category, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
UPDATE categories SET title = $2, slug = $3, description = $4, is_active = $5, updated_at = $6
WHERE id = $1
RETURNING ` + categoryColumns
	out, err := scanCategory(run.QueryRowContext(ctx, q,
		c.ID, c.Title, c.Slug, c.Description, c.IsActive, c.UpdatedAt.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return categorydom.Category{}, categorydom.ErrNotFound
		}
		return categorydom.Category{}, categoryUniqueErr(err)
	}
	return out, nil
}

func (r *CategoryRepositoryPG) Delete(ctx context.Context, id string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		if dbcommon.IsForeignKeyViolation(err) {
			return categorydom.ErrHasProducts
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return categorydom.ErrNotFound
	}
	return nil
}

func categoryUniqueErr(err error) error {
	if !dbcommon.IsUniqueViolation(err) {
		return err
	}
	if strings.Contains(dbcommon.ConstraintName(err), "slug") {
		return categorydom.ErrSlugTaken
	}
	return categorydom.ErrTitleTaken
}

func scanCategory(s dbcommon.RowScanner) (categorydom.Category, error) {
	var c categorydom.Category
	if err := s.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return categorydom.Category{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
