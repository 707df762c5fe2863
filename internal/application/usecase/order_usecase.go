// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"log"
	"strings"

	"storefront/internal/domain/apperr"
	"storefront/internal/domain/common"
	orderdom "storefront/internal/domain/order"
	"storefront/internal/domain/permission"
)

// OrderUsecase serves order reads for customers and the staff admin
// surface (list / detail / status changes).
type OrderUsecase struct {
	tx     TxManager
	orders orderdom.Repository
	clock  Clock
}

func NewOrderUsecase(tx TxManager, orders orderdom.Repository) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, clock: systemClock{}}
}

// ListMine lists the caller's orders, newest first.
func (uc *OrderUsecase) ListMine(ctx context.Context, actor permission.Actor, page common.Page) (common.PageResult[orderdom.Order], error) {
	if err := permission.RequireAuth(actor); err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}
	return uc.orders.List(ctx, orderdom.Filter{UserID: actor.UserID}, page)
}

// GetMine returns one of the caller's orders. Foreign orders are NotFound.
func (uc *OrderUsecase) GetMine(ctx context.Context, actor permission.Actor, id string) (orderdom.Order, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return orderdom.Order{}, err
	}
	o, err := uc.orders.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return orderdom.Order{}, err
	}
	if o.UserID != actor.UserID {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

// AdminList lists every order, optionally only those of userID.
func (uc *OrderUsecase) AdminList(ctx context.Context, actor permission.Actor, userID string, page common.Page) (common.PageResult[orderdom.Order], error) {
	if err := permission.RequireStaff(actor); err != nil {
		return common.PageResult[orderdom.Order]{}, err
	}
	return uc.orders.List(ctx, orderdom.Filter{UserID: strings.TrimSpace(userID)}, page)
}

func (uc *OrderUsecase) AdminGet(ctx context.Context, actor permission.Actor, id string) (orderdom.Order, error) {
	if err := permission.RequireStaff(actor); err != nil {
		return orderdom.Order{}, err
	}
	return uc.orders.GetByID(ctx, strings.TrimSpace(id))
}

// AdminUpdateStatus moves an order along the status machine. Cancellation
// does not return stock.
func (uc *OrderUsecase) AdminUpdateStatus(ctx context.Context, actor permission.Actor, id, status string) (orderdom.Order, error) {
	o, err := uc.AdminGet(ctx, actor, id)
	if err != nil {
		return orderdom.Order{}, err
	}
	to, ok := orderdom.ParseStatus(status)
	if !ok {
		return orderdom.Order{}, apperr.Validation("status", `"`+status+`" is not a valid choice.`)
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := uc.orders.GetForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		from := cur.Status
		if err := cur.TransitionTo(to, uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.orders.UpdateStatus(ctx, cur.ID, cur.Status, cur.UpdatedAt); err != nil {
			return err
		}
		log.Printf("[order_uc] status order=%s %s->%s by=%s", cur.ID, from, cur.Status, actor.UserID)
		return nil
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return uc.orders.GetByID(ctx, o.ID)
}
