package domain

import "time"

// EventKind identifies a notification to be delivered by the dispatcher.
// Publishing is fire-and-forget: a failed publish never rolls back the
// business transaction that triggered it.
type EventKind string

const (
	EventOrderConfirmation         EventKind = "order_confirmation"
	EventAdminOrderNotice          EventKind = "admin_order_notice"
	EventAffiliateCommissionEarned EventKind = "affiliate_commission_earned"
	EventAffiliateSignup           EventKind = "affiliate_signup"
	EventWithdrawalRequested       EventKind = "withdrawal_requested"
	EventWithdrawalProcessed       EventKind = "withdrawal_processed"
	EventContactForm               EventKind = "contact_form"
)

type NotificationEvent struct {
	Kind       EventKind          `json:"kind"`
	OccurredAt time.Time          `json:"occurred_at"`
	Order      *OrderNotice       `json:"order,omitempty"`
	Affiliate  *AffiliateNotice   `json:"affiliate,omitempty"`
	Withdrawal *WithdrawalNotice  `json:"withdrawal,omitempty"`
	Contact    *ContactFormNotice `json:"contact,omitempty"`
}

type OrderNotice struct {
	OrderNumber string `json:"order_number"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

type AffiliateNotice struct {
	AffiliateCode    string `json:"affiliate_code"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	CommissionAmount string `json:"commission_amount,omitempty"`
	OrderNumber      string `json:"order_number,omitempty"`
}

type WithdrawalNotice struct {
	AffiliateCode string `json:"affiliate_code"`
	Email         string `json:"email"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}

// Recipient is the company inbox the submission is delivered to; Email is
// the submitter's address and only appears in the body.
type ContactFormNotice struct {
	Recipient string `json:"recipient"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}
