package validation

import (
	"sort"
	"strings"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
)

const (
	MsgRequired      = "This field is required"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgInvalidPhone  = "Please enter a valid phone number"
	MsgInvalidPostal = "Please enter a valid postal code"
)

// FieldErrors maps a dotted field path such as "shipping.email" to the message
// shown next to that field. One message per field.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; ok {
		return
	}
	fe[field] = msg
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Fields returns the failing field paths in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidateAddress checks one address block and prefixes every field path with
// prefix. Phone is optional but must be well formed when given.
func ValidateAddress(prefix string, a domain.Address) FieldErrors {
	errs := FieldErrors{}
	path := func(f string) string { return prefix + "." + f }

	required := []struct {
		field string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"email", a.Email},
		{"address1", a.Address1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs.Add(path(r.field), MsgRequired)
		}
	}

	if a.Email != "" && !IsValidEmail(a.Email) {
		errs.Add(path("email"), MsgInvalidEmail)
	}
	if a.Phone != "" && !IsValidPhone(a.Phone) {
		errs.Add(path("phone"), MsgInvalidPhone)
	}
	if a.PostalCode != "" && !IsValidPostalCode(a.PostalCode, a.Country) {
		errs.Add(path("postalCode"), MsgInvalidPostal)
	}

	return errs
}

// ValidateCheckout validates shipping always and billing only when it is not
// marked as the same as shipping.
func ValidateCheckout(form domain.CheckoutForm) FieldErrors {
	errs := ValidateAddress("shipping", form.Shipping)
	if !form.Billing.SameAsShipping {
		for k, v := range ValidateAddress("billing", form.Billing.Address) {
			errs.Add(k, v)
		}
	}
	return errs
}
