package validation

// CheckoutRequest is the shipping form submitted at checkout.
type CheckoutRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
	Pincode string `json:"pincode" validate:"required,pincode"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

type AffiliateSignupRequest struct {
	BankAccountName   string `json:"bank_account_name" validate:"max=100"`
	BankAccountNumber string `json:"bank_account_number" validate:"max=50"`
	BankIFSCCode      string `json:"bank_ifsc_code" validate:"max=20"`
	UPIID             string `json:"upi_id" validate:"max=100"`
}

type WithdrawalRequest struct {
	Amount        string `json:"amount" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=bank upi"`
}

type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=100"`
}

type AddressRequest struct {
	Type         string `json:"type" validate:"omitempty,oneof=home work other"`
	Name         string `json:"name" validate:"required,max=100"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2" validate:"max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	Pincode      string `json:"pincode" validate:"required,pincode"`
	IsDefault    bool   `json:"is_default"`
}

type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}
