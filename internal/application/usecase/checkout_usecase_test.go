package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/apperr"
	orderdom "storefront/internal/domain/order"
	"storefront/internal/domain/permission"
	productdom "storefront/internal/domain/product"
)

func address() orderdom.Address {
	return orderdom.Address{
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "555-0100",
		Line1:       "1 Analytical Way",
		City:        "London",
		District:    "Camden",
		PostalCode:  "NW1",
		Country:     "UK",
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture()
	alice := f.store.seedUser(t, "alice", false)

	_, err := f.checkout.PlaceOrder(context.Background(), alice, address())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrEmptyCart))
	assert.Equal(t, "Your cart is empty.", apperr.PublicMessage(err))
	assert.Equal(t, 0, f.store.orderCount())
}

func TestCheckout_InvalidAddress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.store.seedUser(t, "alice", false)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)
	_, err := f.carts.AddItem(ctx, alice, mouse.ID, nil)
	require.NoError(t, err)

	addr := address()
	addr.City = ""
	_, err = f.checkout.PlaceOrder(ctx, alice, addr)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "city", apperr.FieldOf(err))
	assert.Equal(t, 1, f.store.lineCount())
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.store.seedUser(t, "alice", false)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "19.99", 5, true)
	pad := f.store.seedProduct(t, cat, "Pad", "4.50", 10, true)

	_, err := f.carts.AddItem(ctx, alice, mouse.ID, qty(2))
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, alice, pad.ID, qty(3))
	require.NoError(t, err)

	o, err := f.checkout.PlaceOrder(ctx, alice, address())
	require.NoError(t, err)

	assert.Equal(t, orderdom.StatusPending, o.Status)
	assert.Equal(t, "mock", o.PaymentMethod)
	require.Len(t, o.Items, 2)
	assert.True(t, decimal.RequireFromString("53.48").Equal(o.Total))
	assert.True(t, o.Total.Equal(o.ComputeTotal()))

	assert.Equal(t, 3, f.store.stockOf(mouse.ID))
	assert.Equal(t, 7, f.store.stockOf(pad.ID))
	assert.Equal(t, 0, f.store.lineCount(), "cart is cleared with the order")

	stored, err := f.orders.GetMine(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(stored.Total))
	f.checkout.WaitNotifications()
	assert.Equal(t, []string{o.ID}, f.notifier.orders)
}

func TestCheckout_RechecksStockAtCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.store.seedUser(t, "alice", false)
	staff := f.store.seedUser(t, "admin", true)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)
	pad := f.store.seedProduct(t, cat, "Pad", "2.00", 5, true)

	_, err := f.carts.AddItem(ctx, alice, pad.ID, qty(1))
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, alice, mouse.ID, qty(4))
	require.NoError(t, err)

	// stock drops after the line was added
	two := 2
	_, err = f.products.Patch(ctx, staff, mouse.ID, productdom.Patch{Stock: &two})
	require.NoError(t, err)

	_, err = f.checkout.PlaceOrder(ctx, alice, address())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, "Only 2 item(s) left in stock.", apperr.PublicMessage(err))

	assert.Equal(t, 0, f.store.orderCount())
	assert.Equal(t, 5, f.store.stockOf(pad.ID), "no line is decremented when any line fails")
	assert.Equal(t, 2, f.store.stockOf(mouse.ID))
	assert.Equal(t, 2, f.store.lineCount(), "cart survives a failed checkout")
}

func TestCheckout_RollsBackOnLateFailure(t *testing.T) {
	for _, op := range []string{"orders.SetTotal", "carts.Clear", "products.DecreaseStock"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			alice := f.store.seedUser(t, "alice", false)
			cat := f.store.seedCategory(t, "Peripherals", true)
			mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)

			_, err := f.carts.AddItem(ctx, alice, mouse.ID, qty(2))
			require.NoError(t, err)

			boom := errors.New("storage went away")
			f.store.failAt(op, boom)

			_, err = f.checkout.PlaceOrder(ctx, alice, address())
			require.ErrorIs(t, err, boom)

			assert.Equal(t, 0, f.store.orderCount())
			assert.Empty(t, f.store.items)
			assert.Equal(t, 5, f.store.stockOf(mouse.ID))
			assert.Equal(t, 1, f.store.lineCount())
			f.checkout.WaitNotifications()
			assert.Empty(t, f.notifier.orders)
		})
	}
}

func TestCheckout_NotifierFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.notifier.err = errors.New("sendgrid: 503")
	alice := f.store.seedUser(t, "alice", false)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)
	_, err := f.carts.AddItem(ctx, alice, mouse.ID, nil)
	require.NoError(t, err)

	o, err := f.checkout.PlaceOrder(ctx, alice, address())
	require.NoError(t, err)
	f.checkout.WaitNotifications()
	assert.Equal(t, 1, f.store.orderCount())
	assert.Equal(t, []string{o.ID}, f.notifier.orders)
}

func TestCheckout_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)

	const buyers = 20
	actors := make([]permission.Actor, buyers)
	for i := range actors {
		actors[i] = f.store.seedUser(t, fmt.Sprintf("buyer%d", i), false)
		_, err := f.carts.AddItem(ctx, actors[i], mouse.ID, nil)
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for _, a := range actors {
		wg.Add(1)
		go func(a permission.Actor) {
			defer wg.Done()
			_, err := f.checkout.PlaceOrder(ctx, a, address())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if errors.Is(err, apperr.ErrInsufficientStock) {
				fail++
			}
		}(a)
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, fail)
	assert.Equal(t, 0, f.store.stockOf(mouse.ID))
	assert.Equal(t, 5, f.store.orderCount())
}

func TestCheckout_FrozenPriceSurvivesProductChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.store.seedUser(t, "alice", false)
	staff := f.store.seedUser(t, "admin", true)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)

	_, err := f.carts.AddItem(ctx, alice, mouse.ID, qty(2))
	require.NoError(t, err)
	o, err := f.checkout.PlaceOrder(ctx, alice, address())
	require.NoError(t, err)

	price := decimal.RequireFromString("99.00")
	_, err = f.products.Patch(ctx, staff, mouse.ID, productdom.Patch{Price: &price})
	require.NoError(t, err)

	got, err := f.orders.GetMine(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Items[0].Price))
	assert.True(t, decimal.RequireFromString("20.00").Equal(got.Total))

	require.NoError(t, f.products.Delete(ctx, staff, mouse.ID))
	got, err = f.orders.GetMine(ctx, alice, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID, "order line detaches from a deleted product")
	assert.Nil(t, got.Items[0].Product)
	assert.True(t, decimal.RequireFromString("10.00").Equal(got.Items[0].Price))
}

// blockingNotifier holds the mail until release is closed.
type blockingNotifier struct {
	release chan struct{}
	ctxErr  error
	hasDL   bool
}

func (n *blockingNotifier) OrderPlaced(ctx context.Context, _ orderdom.Order) error {
	<-n.release
	_, n.hasDL = ctx.Deadline()
	n.ctxErr = ctx.Err()
	return nil
}

func TestCheckout_MailDoesNotBlockOrOutliveRequestCancel(t *testing.T) {
	f := newFixture()
	n := &blockingNotifier{release: make(chan struct{})}
	f.checkout = NewCheckoutUsecase(f.store, memCarts{f.store}, memProducts{f.store}, memOrders{f.store}, n)
	alice := f.store.seedUser(t, "alice", false)
	cat := f.store.seedCategory(t, "Peripherals", true)
	mouse := f.store.seedProduct(t, cat, "Mouse", "10.00", 5, true)
	_, err := f.carts.AddItem(context.Background(), alice, mouse.ID, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = f.checkout.PlaceOrder(ctx, alice, address())
	require.NoError(t, err, "order returns while the mail is still pending")
	cancel()

	close(n.release)
	f.checkout.WaitNotifications()
	assert.NoError(t, n.ctxErr, "client disconnect does not cancel the mail")
	assert.True(t, n.hasDL, "mail is bounded by a timeout")
}
