// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	orderdom "storefront/internal/domain/order"
)

// EmailClient は実際のメール送信クライアント（SMTP / SendGrid など）を
// 抽象化した下位レベルのインターフェースです。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// OrderMailer sends the order confirmation to the shipping email.
type OrderMailer struct {
	client      EmailClient
	fromAddress string
}

var _ orderdom.Notifier = (*OrderMailer)(nil)

func NewOrderMailer(client EmailClient, fromAddress string) *OrderMailer {
	return &OrderMailer{client: client, fromAddress: strings.TrimSpace(fromAddress)}
}

func (m *OrderMailer) OrderPlaced(ctx context.Context, o orderdom.Order) error {
	to := strings.TrimSpace(o.Address.Email)
	if to == "" {
		return nil
	}
	return m.client.Send(ctx, m.fromAddress, to, orderSubject(o), orderBody(o))
}

func orderSubject(o orderdom.Order) string {
	return fmt.Sprintf("Your order %s has been received", o.ID)
}

func orderBody(o orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", o.Address.FullName)
	fmt.Fprintf(&b, "Thank you for your order. It is now %s.\n\n", o.Status)
	for _, it := range o.Items {
		title := "(removed product)"
		if it.Product != nil {
			title = it.Product.Title
		}
		fmt.Fprintf(&b, "  %d x %s @ %s = %s\n", it.Quantity, title, it.Price.StringFixed(2), it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n", o.Total.StringFixed(2))

	a := o.Address
	b.WriteString("Shipping to:\n")
	fmt.Fprintf(&b, "  %s\n  %s\n", a.FullName, a.Line1)
	if a.Line2 != "" {
		fmt.Fprintf(&b, "  %s\n", a.Line2)
	}
	fmt.Fprintf(&b, "  %s, %s %s\n  %s\n", a.City, a.District, a.PostalCode, a.Country)
	return b.String()
}
