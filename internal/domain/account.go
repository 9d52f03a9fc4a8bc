package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAggregate is what signup returns: the user plus the dependent rows
// created alongside it, so callers never depend on implicit hooks having run.
type UserAggregate struct {
	User        User            `json:"user"`
	Cart        Cart            `json:"cart"`
	Preferences UserPreferences `json:"preferences"`
}

type UserPreferences struct {
	UserID            string `json:"user_id"`
	EmailMarketing    bool   `json:"email_marketing"`
	EmailOrderUpdates bool   `json:"email_order_updates"`
	SMSNotifications  bool   `json:"sms_notifications"`
}

type AddressType string

const (
	AddressTypeHome  AddressType = "home"
	AddressTypeWork  AddressType = "work"
	AddressTypeOther AddressType = "other"
)

type Address struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Type         AddressType `json:"type"`
	Name         string      `json:"name"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	Pincode      string      `json:"pincode"`
	IsDefault    bool        `json:"is_default"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type WishlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

type NewsletterSubscription struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	IsActive       bool       `json:"is_active"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}
