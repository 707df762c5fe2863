// internal/adapters/out/db/cart_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	dbcommon "storefront/internal/adapters/out/db/common"
	"storefront/internal/domain/apperr"
	cartdom "storefront/internal/domain/cart"
)

type CartRepositoryPG struct {
	DB *sql.DB
}

func NewCartRepositoryPG(db *sql.DB) *CartRepositoryPG {
	return &CartRepositoryPG{DB: db}
}

// GetOrCreate relies on UNIQUE(user_id): a racing insert is ignored and
// both callers read the same row.
func (r *CartRepositoryPG) GetOrCreate(ctx context.Context, userID string, forUpdate bool) (cartdom.Cart, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	userID = strings.TrimSpace(userID)
	now := time.Now().UTC()

	if _, err := run.ExecContext(ctx, `
INSERT INTO carts (id, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (user_id) DO NOTHING`, uuid.NewString(), userID, now); err != nil {
		return cartdom.Cart{}, dbcommon.Translate("cart.GetOrCreate", err)
	}

	q := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var c cartdom.Cart
	if err := run.QueryRowContext(ctx, q, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return cartdom.Cart{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	lines, err := r.lines(ctx, run, c.ID)
	if err != nil {
		return cartdom.Cart{}, err
	}
	c.Lines = lines
	return c, nil
}

func (r *CartRepositoryPG) lines(ctx context.Context, run dbcommon.Runner, cartID string) ([]cartdom.Line, error) {
	rows, err := run.QueryContext(ctx, `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, p.title, p.price
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cartdom.Line
	for rows.Next() {
		var l cartdom.Line
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.ProductTitle, &l.UnitPrice); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *CartRepositoryPG) InsertLine(ctx context.Context, l cartdom.Line) (cartdom.Line, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	_, err := run.ExecContext(ctx, `
INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at)
VALUES ($1, $2, $3, $4, $5)`, l.ID, l.CartID, l.ProductID, l.Quantity, l.CreatedAt.UTC())
	if err != nil {
		if dbcommon.IsUniqueViolation(err) {
			return cartdom.Line{}, apperr.Wrap("cart.InsertLine", apperr.KindConflict, "Product is already in the cart.", err)
		}
		return cartdom.Line{}, dbcommon.Translate("cart.InsertLine", err)
	}
	if err := r.touch(ctx, run, l.CartID); err != nil {
		return cartdom.Line{}, err
	}
	return l, nil
}

func (r *CartRepositoryPG) UpdateLineQuantity(ctx context.Context, cartID, lineID string, qty int) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND cart_id = $2`,
		strings.TrimSpace(lineID), cartID, qty)
	if err != nil {
		return dbcommon.Translate("cart.UpdateLineQuantity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cartdom.ErrLineNotFound
	}
	return r.touch(ctx, run, cartID)
}

func (r *CartRepositoryPG) DeleteLine(ctx context.Context, cartID, lineID string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, strings.TrimSpace(lineID), cartID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return cartdom.ErrLineNotFound
	}
	return r.touch(ctx, run, cartID)
}

func (r *CartRepositoryPG) Clear(ctx context.Context, cartID string) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	if _, err := run.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	return r.touch(ctx, run, cartID)
}

func (r *CartRepositoryPG) touch(ctx context.Context, run dbcommon.Runner, cartID string) error {
	_, err := run.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}
