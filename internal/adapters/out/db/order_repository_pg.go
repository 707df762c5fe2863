// internal/adapters/out/db/order_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	dbcommon "storefront/internal/adapters/out/db/common"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
)

type OrderRepositoryPG struct {
	DB *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

const orderSelect = `
SELECT
  o.id, o.user_id, u.username,
  o.full_name, o.email, o.phone_number, o.address_line_1, o.address_line_2,
  o.city, o.district, o.postal_code, o.country,
  o.status, o.payment_method, o.order_total, o.created_at, o.updated_at
FROM orders o
JOIN users u ON u.id = o.user_id`

// ========================
// Reads
// ========================

func (r *OrderRepositoryPG) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.id = $1`, id)
}

// GetForUpdate locks the header row only; items are immutable after
// checkout.
func (r *OrderRepositoryPG) GetForUpdate(ctx context.Context, id string) (orderdom.Order, error) {
	return r.getOne(ctx, orderSelect+` WHERE o.id = $1 FOR UPDATE OF o`, id)
}

func (r *OrderRepositoryPG) getOne(ctx context.Context, q, id string) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	o, err := scanOrder(run.QueryRowContext(ctx, q, strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	items, err := r.itemsFor(ctx, run, []string{o.ID})
	if err != nil {
		return orderdom.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *OrderRepositoryPG) List(ctx context.Context, f orderdom.Filter, page common.Page) (common.PageResult[orderdom.Order], error) {
	run := dbcommon.GetRunner(ctx, r.DB)

	where := []string{}
	args := []any{}
	if v := strings.TrimSpace(f.UserID); v != "" {
		dbcommon.AppendCond(&where, &args, "o.user_id = $%d", v)
	}
	whereSQL := dbcommon.WhereSQL(where)
	_, limit, offset := common.NormalizePage(page)

	total, err := dbcommon.QueryCount(ctx, run, "SELECT COUNT(*) FROM orders o "+whereSQL, args...)
	if err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}

	q := fmt.Sprintf(`%s
%s
ORDER BY o.created_at DESC, o.id DESC
LIMIT $%d OFFSET $%d`, orderSelect, whereSQL, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := run.QueryContext(ctx, q, args...)
	if err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}
	orders := make([]orderdom.Order, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return common.PageResult[orderdom.Order]{}, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}

	items, err := r.itemsFor(ctx, run, ids)
	if err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return common.NewPageResult(orders, total, page), nil
}

// itemsFor loads the lines of several orders in one query. Lines whose
// product was deleted come back with ProductID and Product nil.
func (r *OrderRepositoryPG) itemsFor(ctx context.Context, run dbcommon.Runner, orderIDs []string) (map[string][]orderdom.Item, error) {
	out := make(map[string][]orderdom.Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := run.QueryContext(ctx, `
SELECT
  oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
  p.title, p.price, p.image_url, c.title
FROM order_items oi
LEFT JOIN products p   ON p.id = oi.product_id
LEFT JOIN categories c ON c.id = p.category_id
WHERE oi.order_id = ANY($1)
ORDER BY oi.order_id, oi.id`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it                    orderdom.Item
			productID             sql.NullString
			title, image, catName sql.NullString
			currentPrice          decimal.NullDecimal
		)
		if err := rows.Scan(
			&it.ID, &it.OrderID, &productID, &it.Quantity, &it.Price,
			&title, &currentPrice, &image, &catName,
		); err != nil {
			return nil, err
		}
		it.ProductID = dbcommon.FromNullString(productID)
		if it.ProductID != nil && title.Valid {
			it.Product = &orderdom.ItemProduct{
				ID:            *it.ProductID,
				Title:         title.String,
				Price:         currentPrice.Decimal,
				ImageURL:      image.String,
				CategoryTitle: catName.String,
			}
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// ========================
// Writes
// ========================

func (r *OrderRepositoryPG) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	a := o.Address
	_, err := run.ExecContext(ctx, `
INSERT INTO orders (
  id, user_id, full_name, email, phone_number, address_line_1, address_line_2,
  city, district, postal_code, country, status, payment_method, order_total,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.UserID, a.FullName, a.Email, a.PhoneNumber, a.Line1, a.Line2,
		a.City, a.District, a.PostalCode, a.Country, string(o.Status), o.PaymentMethod, o.Total,
		o.CreatedAt.UTC(), o.UpdatedAt.UTC(),
	)
	if err != nil {
		return orderdom.Order{}, dbcommon.Translate("order.Create", err)
	}
	o.Items = nil
	return o, nil
}

func (r *OrderRepositoryPG) AddItem(ctx context.Context, it orderdom.Item) (orderdom.Item, error) {
	run := dbcommon.GetRunner(ctx, r.DB)
	_, err := run.ExecContext(ctx, `
INSERT INTO order_items (id, order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4, $5)`,
		it.ID, it.OrderID, dbcommon.ToDBText(it.ProductID), it.Quantity, it.Price)
	if err != nil {
		return orderdom.Item{}, dbcommon.Translate("order.AddItem", err)
	}
	return it, nil
}

func (r *OrderRepositoryPG) SetTotal(ctx context.Context, id string, total decimal.Decimal, now time.Time) error {
	return r.exec(ctx, `UPDATE orders SET order_total = $2, updated_at = $3 WHERE id = $1`, id, total, now.UTC())
}

func (r *OrderRepositoryPG) UpdateStatus(ctx context.Context, id string, status orderdom.Status, now time.Time) error {
	return r.exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), now.UTC())
}

func (r *OrderRepositoryPG) exec(ctx context.Context, q, id string, args ...any) error {
	run := dbcommon.GetRunner(ctx, r.DB)
	res, err := run.ExecContext(ctx, q, append([]any{strings.TrimSpace(id)}, args...)...)
	if err != nil {
		return dbcommon.Translate("order.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return orderdom.ErrNotFound
	}
	return nil
}

// =====================================================
// Scanners
// =====================================================

func scanOrder(s dbcommon.RowScanner) (orderdom.Order, error) {
	var (
		o      orderdom.Order
		status string
	)
	a := &o.Address
	if err := s.Scan(
		&o.ID, &o.UserID, &o.Username,
		&a.FullName, &a.Email, &a.PhoneNumber, &a.Line1, &a.Line2,
		&a.City, &a.District, &a.PostalCode, &a.Country,
		&status, &o.PaymentMethod, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return orderdom.Order{}, err
	}
	o.Status = orderdom.Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}
