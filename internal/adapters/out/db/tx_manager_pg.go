// internal/adapters/out/db/tx_manager_pg.go
package db

import (
	"context"
	"database/sql"

	dbcommon "storefront/internal/adapters/out/db/common"
)

// TxManagerPG opens one *sql.Tx per WithinTx call and carries it in ctx so
// every repository below picks it up through dbcommon.GetRunner.
type TxManagerPG struct {
	DB *sql.DB
}

func NewTxManagerPG(db *sql.DB) *TxManagerPG {
	return &TxManagerPG{DB: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. A ctx that
// already carries a transaction joins it.
func (m *TxManagerPG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbcommon.TxFromCtx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	txCtx := dbcommon.CtxWithTx(ctx, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
