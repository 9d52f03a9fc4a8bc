// Package notifier turns notification events into plain-text emails and
// hands them to the email service.
package notifier

import (
	"fmt"

	"github.com/emeraldlabs/storefront/internal/domain"
)

// Email is the payload accepted by the email service's /send endpoint.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Render produces the email for an event, or ok=false when the event carries
// no payload for its kind and should be skipped.
func Render(event domain.NotificationEvent) (Email, bool) {
	switch event.Kind {
	case domain.EventOrderConfirmation:
		if event.Order == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Order.Email,
			Subject: fmt.Sprintf("Order %s confirmed", event.Order.OrderNumber),
			Body: fmt.Sprintf("Hi %s,\n\nThanks for your order %s. We received %d item(s) totalling %s and will let you know once it ships.\n",
				event.Order.Name, event.Order.OrderNumber, event.Order.ItemCount, event.Order.TotalAmount),
		}, true

	case domain.EventAdminOrderNotice:
		if event.Order == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Order.Email,
			Subject: fmt.Sprintf("New order %s", event.Order.OrderNumber),
			Body: fmt.Sprintf("Order %s placed by %s: %d item(s), total %s.\n",
				event.Order.OrderNumber, event.Order.Name, event.Order.ItemCount, event.Order.TotalAmount),
		}, true

	case domain.EventAffiliateCommissionEarned:
		if event.Affiliate == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Affiliate.Email,
			Subject: "You earned a commission",
			Body: fmt.Sprintf("Hi %s,\n\nOrder %s earned you a commission of %s. It will appear in your pending earnings once approved.\n",
				event.Affiliate.Name, event.Affiliate.OrderNumber, event.Affiliate.CommissionAmount),
		}, true

	case domain.EventAffiliateSignup:
		if event.Affiliate == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Affiliate.Email,
			Subject: "Welcome to the affiliate program",
			Body: fmt.Sprintf("Hi %s,\n\nYour affiliate code is %s. Your account will start earning once it is approved.\n",
				event.Affiliate.Name, event.Affiliate.AffiliateCode),
		}, true

	case domain.EventWithdrawalRequested:
		if event.Withdrawal == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Withdrawal.Email,
			Subject: "Withdrawal request received",
			Body: fmt.Sprintf("We received your withdrawal request for %s. Current status: %s.\n",
				event.Withdrawal.Amount, event.Withdrawal.Status),
		}, true

	case domain.EventWithdrawalProcessed:
		if event.Withdrawal == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Withdrawal.Email,
			Subject: "Withdrawal " + event.Withdrawal.Status,
			Body: fmt.Sprintf("Your withdrawal of %s is now %s.\n",
				event.Withdrawal.Amount, event.Withdrawal.Status),
		}, true

	case domain.EventContactForm:
		if event.Contact == nil {
			return Email{}, false
		}
		return Email{
			To:      event.Contact.Recipient,
			Subject: "Contact form: " + event.Contact.Subject,
			Body: fmt.Sprintf("From: %s <%s>\n\n%s\n",
				event.Contact.Name, event.Contact.Email, event.Contact.Message),
		}, true
	}

	return Email{}, false
}
