// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/domain/apperr"
	cartdom "storefront/internal/domain/cart"
	orderdom "storefront/internal/domain/order"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

// CheckoutUsecase turns the caller's cart into a pending order.
type CheckoutUsecase struct {
	tx       TxManager
	carts    cartdom.Repository
	products productdom.Repository
	orders   orderdom.Repository
	notifier orderdom.Notifier
	clock    Clock
	ids      IDGenerator

	// order mail runs after the response on its own context
	mailTimeout time.Duration
	mailWG      sync.WaitGroup
}

const defaultOrderMailTimeout = 15 * time.Second

func NewCheckoutUsecase(
	tx TxManager,
	carts cartdom.Repository,
	products productdom.Repository,
	orders orderdom.Repository,
	notifier orderdom.Notifier,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		carts:    carts,
		products: products,
		orders:   orders,
		notifier:    notifier,
		clock:       systemClock{},
		ids:         newID,
		mailTimeout: defaultOrderMailTimeout,
	}
}

// PlaceOrder runs the whole checkout in one transaction:
//  1. empty cart is rejected
//  2. product rows are locked and every line is checked against current stock
//  3. the order header is created as pending
//  4. each line is copied with its price frozen and stock is decremented
//  5. the total is computed from the copied lines
//  6. the cart is cleared
//
// Any failure rolls back all six steps.
func (uc *CheckoutUsecase) PlaceOrder(ctx context.Context, actor permission.Actor, addr orderdom.Address) (orderdom.Order, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return orderdom.Order{}, err
	}
	if err := addr.Validate(); err != nil {
		return orderdom.Order{}, err
	}

	ctx, span := tracer.Start(ctx, "checkout.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", actor.UserID))

	var placed orderdom.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return cartdom.ErrEmpty
		}

		locked, err := uc.products.LockForUpdate(ctx, c.ProductIDs())
		if err != nil {
			return err
		}
		byID := make(map[string]productdom.Product, len(locked))
		for _, p := range locked {
			byID[p.ID] = p
		}
		for _, l := range c.Lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return apperr.Wrap("checkout.PlaceOrder", apperr.KindNotFound, "Product not found.", productdom.ErrNotFound)
			}
			if err := productdom.CheckStock(p, l.Quantity); err != nil {
				return err
			}
		}

		now := uc.clock.Now()
		o, err := orderdom.New(uc.ids(), actor.UserID, addr, now)
		if err != nil {
			return err
		}
		if o, err = uc.orders.Create(ctx, o); err != nil {
			return err
		}

		for _, l := range c.Lines {
			p := byID[l.ProductID]
			it, err := uc.orders.AddItem(ctx, orderdom.NewItem(uc.ids(), o.ID, p.ID, l.Quantity, p.Price))
			if err != nil {
				return err
			}
			if err := uc.products.DecreaseStock(ctx, p.ID, l.Quantity); err != nil {
				return err
			}
			it.Product = &orderdom.ItemProduct{
				ID:            p.ID,
				Title:         p.Title,
				Price:         p.Price,
				ImageURL:      p.ImageURL,
				CategoryTitle: p.CategoryTitle,
			}
			o.Items = append(o.Items, it)
		}

		o.Total = o.ComputeTotal()
		if err := uc.orders.SetTotal(ctx, o.ID, o.Total, now); err != nil {
			return err
		}
		if err := uc.carts.Clear(ctx, c.ID); err != nil {
			return err
		}
		o.Username = actor.Username
		placed = o
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
		if apperr.KindOf(err) == apperr.KindInternal {
			log.Printf("[checkout_uc] ERROR: place order user=%s err=%v", actor.UserID, err)
		}
		return orderdom.Order{}, err
	}

	span.SetAttributes(attribute.String("order.id", placed.ID), attribute.String("order.total", placed.Total.StringFixed(2)))
	log.Printf("[checkout_uc] OK: order placed user=%s order=%s items=%d total=%s",
		actor.UserID, placed.ID, len(placed.Items), placed.Total.StringFixed(2),
	)

	uc.notifyPlaced(ctx, placed)
	return placed, nil
}

// notifyPlaced sends the confirmation mail in the background. The mail
// outlives the request (client disconnects do not cancel it) but is
// bounded by mailTimeout.
func (uc *CheckoutUsecase) notifyPlaced(ctx context.Context, o orderdom.Order) {
	if uc.notifier == nil {
		return
	}
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.mailTimeout)
	uc.mailWG.Add(1)
	go func() {
		defer uc.mailWG.Done()
		defer cancel()
		if err := uc.notifier.OrderPlaced(mailCtx, o); err != nil {
			log.Printf("[checkout_uc] WARN: order notification failed order=%s err=%v", o.ID, err)
		}
	}()
}

// WaitNotifications blocks until every pending order mail has finished.
// Called on shutdown.
func (uc *CheckoutUsecase) WaitNotifications() {
	uc.mailWG.Wait()
}
