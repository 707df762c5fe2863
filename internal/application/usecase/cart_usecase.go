// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront/internal/domain/apperr"
	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

// CartUsecase coordinates cart operations. Every mutation runs in one
// transaction with the owner's cart row locked.
type CartUsecase struct {
	tx       TxManager
	carts    cartdom.Repository
	products productdom.Repository
	clock    Clock
	ids      IDGenerator
}

func NewCartUsecase(tx TxManager, carts cartdom.Repository, products productdom.Repository) *CartUsecase {
	return &CartUsecase{tx: tx, carts: carts, products: products, clock: systemClock{}, ids: newID}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(tx TxManager, carts cartdom.Repository, products productdom.Repository, clock Clock) *CartUsecase {
	uc := NewCartUsecase(tx, carts, products)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Get returns the caller's cart, creating it on first access.
func (uc *CartUsecase) Get(ctx context.Context, actor permission.Actor) (cartdom.Cart, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return cartdom.Cart{}, err
	}
	var out cartdom.Cart
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, false)
		out = c
		return err
	})
	return out, err
}

// AddItem adds qty of productID, merging into an existing line. A nil qty
// means DefaultQuantity.
func (uc *CartUsecase) AddItem(ctx context.Context, actor permission.Actor, productID string, qty *int) (cartdom.Line, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return cartdom.Line{}, err
	}
	q := cartdom.DefaultQuantity
	if qty != nil {
		q = *qty
	}
	if err := cartdom.ValidateAddQuantity(q); err != nil {
		return cartdom.Line{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return cartdom.Line{}, apperr.Validation("product_id", "This field is required.")
	}

	var out cartdom.Line
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		p, err := uc.purchasable(ctx, productID)
		if err != nil {
			return err
		}

		if existing, ok := c.LineForProduct(p.ID); ok {
			merged := existing.Quantity + q
			if err := productdom.CheckStock(p, merged); err != nil {
				return err
			}
			if err := uc.carts.UpdateLineQuantity(ctx, c.ID, existing.ID, merged); err != nil {
				return err
			}
			existing.Quantity = merged
			existing.ProductTitle = p.Title
			existing.UnitPrice = p.Price
			out = existing
			return nil
		}

		if err := productdom.CheckStock(p, q); err != nil {
			return err
		}
		l, err := uc.carts.InsertLine(ctx, cartdom.Line{
			ID:        uc.ids(),
			CartID:    c.ID,
			ProductID: p.ID,
			Quantity:  q,
			CreatedAt: uc.clock.Now(),
		})
		if err != nil {
			return err
		}
		l.ProductTitle = p.Title
		l.UnitPrice = p.Price
		out = l
		return nil
	})
	if err != nil {
		return cartdom.Line{}, err
	}
	log.Printf("[cart_uc] add user=%s product=%s line=%s qty=%d", actor.UserID, productID, out.ID, out.Quantity)
	return out, nil
}

// UpdateItem overwrites a line's quantity. Quantity 0 deletes the line and
// reports removed=true.
func (uc *CartUsecase) UpdateItem(ctx context.Context, actor permission.Actor, lineID string, qty int) (line cartdom.Line, removed bool, err error) {
	if err := permission.RequireAuth(actor); err != nil {
		return cartdom.Line{}, false, err
	}
	if err := cartdom.ValidateUpdateQuantity(qty); err != nil {
		return cartdom.Line{}, false, err
	}
	lineID = strings.TrimSpace(lineID)

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		l, ok := c.Line(lineID)
		if !ok {
			return cartdom.ErrLineNotFound
		}
		if qty == 0 {
			removed = true
			return uc.carts.DeleteLine(ctx, c.ID, l.ID)
		}

		p, err := uc.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if err := productdom.CheckStock(p, qty); err != nil {
			return err
		}
		if err := uc.carts.UpdateLineQuantity(ctx, c.ID, l.ID, qty); err != nil {
			return err
		}
		l.Quantity = qty
		l.ProductTitle = p.Title
		l.UnitPrice = p.Price
		line = l
		return nil
	})
	if err != nil {
		return cartdom.Line{}, false, err
	}
	return line, removed, nil
}

// RemoveItem deletes one line from the caller's cart.
func (uc *CartUsecase) RemoveItem(ctx context.Context, actor permission.Actor, lineID string) error {
	if err := permission.RequireAuth(actor); err != nil {
		return err
	}
	lineID = strings.TrimSpace(lineID)
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		if _, ok := c.Line(lineID); !ok {
			return cartdom.ErrLineNotFound
		}
		return uc.carts.DeleteLine(ctx, c.ID, lineID)
	})
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (uc *CartUsecase) Clear(ctx context.Context, actor permission.Actor) error {
	if err := permission.RequireAuth(actor); err != nil {
		return err
	}
	return uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := uc.carts.GetOrCreate(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		return uc.carts.Clear(ctx, c.ID)
	})
}

// purchasable loads a product that may be added to a cart. Inactive
// products are reported as missing.
func (uc *CartUsecase) purchasable(ctx context.Context, id string) (productdom.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return productdom.Product{}, apperr.Wrap("cart.AddItem", apperr.KindNotFound, "Product not found.", err)
		}
		return productdom.Product{}, err
	}
	if !p.IsActive {
		return productdom.Product{}, apperr.Wrap("cart.AddItem", apperr.KindNotFound, "Product not found.", productdom.ErrNotFound)
	}
	return p, nil
}
