package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type BillingAddress struct {
	Address
	SameAsShipping bool `json:"sameAsShipping"`
}

// CheckoutForm holds the values submitted from the checkout surface.
type CheckoutForm struct {
	Shipping Address           `json:"shipping"`
	Billing  BillingAddress    `json:"billing"`
	Notes    string            `json:"notes,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ResolvedBilling returns the billing address, copied from shipping when the
// form says they are the same.
func (f CheckoutForm) ResolvedBilling() Address {
	if f.Billing.SameAsShipping {
		return f.Shipping
	}
	return f.Billing.Address
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Order is created once at checkout submission and never modified afterwards.
type Order struct {
	ID        string            `json:"id"`
	Lines     []CartLine        `json:"lines"`
	Shipping  Address           `json:"shippingAddress"`
	Billing   Address           `json:"billingAddress"`
	Totals    Totals            `json:"totals"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type RedirectMethod string

const (
	RedirectGET  RedirectMethod = "GET"
	RedirectPOST RedirectMethod = "POST"
)

func (m RedirectMethod) String() string {
	return string(m)
}

// PaymentRedirectConfig tells the payment redirect collaborator where to send
// the shopper once the order exists.
type PaymentRedirectConfig struct {
	URL    string            `json:"url"`
	Method RedirectMethod    `json:"method"`
	Params map[string]string `json:"params,omitempty"`
}
