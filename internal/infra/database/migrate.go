// internal/infra/database/migrate.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	cartdom "storefront/internal/domain/cart"
	categorydom "storefront/internal/domain/category"
	commentdom "storefront/internal/domain/comment"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// Schema is one domain's DDL. Order matters: referenced tables first.
type Schema struct {
	Name string
	DDL  string
}

var Schemas = []Schema{
	{Name: "users", DDL: userdom.UsersTableDDL},
	{Name: "categories", DDL: categorydom.CategoriesTableDDL},
	{Name: "products", DDL: productdom.ProductsTableDDL},
	{Name: "comments", DDL: commentdom.CommentsTableDDL},
	{Name: "carts", DDL: cartdom.CartsTableDDL},
	{Name: "orders", DDL: orderdom.OrdersTableDDL},
}

// Migrate applies every schema in one transaction. All DDL is
// CREATE ... IF NOT EXISTS, so running it again is harmless.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range Schemas {
		if _, err := tx.ExecContext(ctx, s.DDL); err != nil {
			return fmt.Errorf("migrate %s: %w", s.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	log.Printf("[DB] schema applied (%d domains)", len(Schemas))
	return nil
}
