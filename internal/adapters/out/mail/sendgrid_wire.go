package mail

import (
	"log"
	"strings"

	orderdom "storefront/internal/domain/order"
)

// NewOrderNotifier returns a SendGrid backed notifier, or nil when mail is
// not configured. A nil Notifier disables order mail in the checkout.
func NewOrderNotifier(apiKey, fromAddr string) orderdom.Notifier {
	apiKey = strings.TrimSpace(apiKey)
	fromAddr = strings.TrimSpace(fromAddr)
	if apiKey == "" || fromAddr == "" {
		log.Printf("[mail] INFO: SENDGRID_API_KEY / SENDGRID_FROM not set, order mail disabled")
		return nil
	}
	log.Printf("[mail] OrderMailer initialized. from=%s", fromAddr)
	return NewOrderMailer(NewSendGridClient(apiKey), fromAddr)
}
