// internal/adapters/out/db/product_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	dbcommon "storefront/internal/adapters/out/db/common"
	categorydom "storefront/internal/domain/category"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

type ProductRepositoryPG struct {
	DB *sql.DB
}

func NewProductRepositoryPG(db *sql.DB) *ProductRepositoryPG {
	return &ProductRepositoryPG{DB: db}
}

const productSelect = `
SELECT
  p.id, p.category_id, p.title, p.description, p.slug, p.price, p.stock,
  p.is_active, p.image_url, p.created_at, p.updated_at, c.title
FROM products p
JOIN categories c ON c.id = p.category_id`

// ========================
// RepositoryPort impl
// ========================

func (r *ProductRepositoryPG) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	p, err := scanProduct(run.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryPG) List(ctx context.Context, f productdom.Filter, page common.Page) (common.PageResult[productdom.Product], error) {
	run := dbcommon.GetRunner(ctx, r.DB)

	where, args := buildProductWhere(f)
	whereSQL := dbcommon.WhereSQL(where)
	_, limit, offset := common.NormalizePage(page)

	total, err := dbcommon.QueryCount(ctx, run, "SELECT COUNT(*) FROM products p "+whereSQL, args...)
	if err != nil {
		return common.PageResult[productdom.Product]{}, err
	}

	q := fmt.Sprintf(`%s
%s
ORDER BY p.created_at DESC, p.id DESC
LIMIT $%d OFFSET $%d`, productSelect, whereSQL, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := run.QueryContext(ctx, q, args...)
	if err != nil {
		return common.PageResult[productdom.Product]{}, err
	}
	defer rows.Close()

	items := make([]productdom.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return common.PageResult[productdom.Product]{}, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return common.PageResult[productdom.Product]{}, err
	}
	return common.NewPageResult(items, total, page), nil
}

func buildProductWhere(f productdom.Filter) ([]string, []any) {
	where := []string{}
	args := []any{}
	if v := strings.TrimSpace(f.CategoryID); v != "" {
		dbcommon.AppendCond(&where, &args, "p.category_id = $%d", v)
	}
	if f.MinPrice != nil {
		dbcommon.AppendCond(&where, &args, "p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		dbcommon.AppendCond(&where, &args, "p.price <= $%d", *f.MaxPrice)
	}
	if f.IsActive != nil {
		dbcommon.AppendCond(&where, &args, "p.is_active = $%d", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	return where, args
}

func (r *ProductRepositoryPG) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
INSERT INTO products (
  id, category_id, title, description, slug, price, stock,
  is_active, image_url, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := run.ExecContext(ctx, q,
		p.ID, p.CategoryID, p.Title, p.Description, p.Slug, p.Price, p.Stock,
		p.IsActive, p.ImageURL, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return productdom.Product{}, productWriteErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProductRepositoryPG) Save(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	const q = `
UPDATE products SET
  category_id = $2, title = $3, description = $4, slug = $5, price = $6,
  stock = $7, is_active = $8, image_url = $9, updated_at = $10
WHERE id = $1`
	res, err := run.ExecContext(ctx, q,
		p.ID, p.CategoryID, p.Title, p.Description, p.Slug, p.Price,
		p.Stock, p.IsActive, p.ImageURL, p.UpdatedAt.UTC(),
	)
	if err != nil {
		return productdom.Product{}, productWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProductRepositoryPG) Delete(ctx context.Context, id string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return productdom.ErrNotFound
	}
	return nil
}

func (r *ProductRepositoryPG) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	return dbcommon.QueryCount(ctx, run, `SELECT COUNT(*) FROM products WHERE category_id = $1`, strings.TrimSpace(categoryID))
}

// LockForUpdate must run inside WithinTx; the row locks end with it.
// ORDER BY id keeps the lock order stable across concurrent checkouts.
func (r *ProductRepositoryPG) LockForUpdate(ctx context.Context, ids []string) ([]productdom.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	run := dbcommon.GetRunner(ctx, r.DB)
	q := productSelect + `
WHERE p.id = ANY($1)
ORDER BY p.id
FOR UPDATE OF p`
	rows, err := run.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]productdom.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecreaseStock is a conditional update; zero affected rows means the
// guard failed and nothing changed.
func (r *ProductRepositoryPG) DecreaseStock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return productdom.ErrInvalidQuantity
	}
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, `
UPDATE products
SET stock = stock - $2, updated_at = NOW()
WHERE id = $1 AND stock >= $2`, strings.TrimSpace(id), qty)
	if err != nil {
		if dbcommon.IsCheckViolation(err) {
			return productdom.ErrInsufficientStock
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return productdom.ErrInsufficientStock
	}
	return nil
}

func productWriteErr(err error) error {
	switch {
	case dbcommon.IsUniqueViolation(err):
		return productdom.ErrSlugTaken
	case dbcommon.IsForeignKeyViolation(err):
		return categorydom.ErrCategoryGone
	}
	return err
}

// =====================================================
// Scanners
// =====================================================

func scanProduct(s dbcommon.RowScanner) (productdom.Product, error) {
	var p productdom.Product
	if err := s.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.Description, &p.Slug, &p.Price, &p.Stock,
		&p.IsActive, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt, &p.CategoryTitle,
	); err != nil {
		return productdom.Product{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
