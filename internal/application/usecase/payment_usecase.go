// internal/application/usecase/payment_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront/internal/domain/apperr"
	orderdom "storefront/internal/domain/order"
	paymentdom "storefront/internal/domain/payment"
	"storefront/internal/domain/permission"
)

// PaymentUsecase is the mock payment processor. It never calls out; a
// successful payment only flips the order from pending to processing.
type PaymentUsecase struct {
	tx     TxManager
	orders orderdom.Repository
	clock  Clock
}

func NewPaymentUsecase(tx TxManager, orders orderdom.Repository) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, orders: orders, clock: systemClock{}}
}

// ProcessPayment pays one of the caller's pending orders.
func (uc *PaymentUsecase) ProcessPayment(ctx context.Context, actor permission.Actor, orderID string) (paymentdom.Receipt, error) {
	if err := permission.RequireAuth(actor); err != nil {
		return paymentdom.Receipt{}, err
	}
	orderID = strings.TrimSpace(orderID)

	ctx, span := tracer.Start(ctx, "payment.ProcessPayment")
	defer span.End()

	var receipt paymentdom.Receipt
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := uc.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return orderdom.ErrNotFound
			}
			return err
		}
		if !permission.Allowed(actor, permission.Owner, permission.Order(o.UserID)) {
			return orderdom.ErrNotFound
		}
		if o.Status != orderdom.StatusPending {
			return orderdom.ErrNotPending
		}
		if len(o.Items) == 0 {
			return orderdom.ErrNoItems
		}
		if err := o.TransitionTo(orderdom.StatusProcessing, uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.orders.UpdateStatus(ctx, o.ID, o.Status, o.UpdatedAt); err != nil {
			return err
		}
		receipt = paymentdom.NewReceipt(o)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return paymentdom.Receipt{}, err
	}
	log.Printf("[payment_uc] OK: paid order=%s payment=%s amount=%s", receipt.OrderID, receipt.PaymentID, receipt.Amount.StringFixed(2))
	return receipt, nil
}
