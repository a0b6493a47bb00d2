package validation

import (
	"testing"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"first.last+tag@shop.example.co", true},
		{"not-an-email", false},
		{"a@b", false},
		{"a b@c.com", false},
		{"@b.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidEmail(tt.in), tt.in)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("555-1234"))
	assert.True(t, IsValidPhone("+1 (555) 123-4567"))
	assert.False(t, IsValidPhone("12345"))
	assert.False(t, IsValidPhone("555-CALL-NOW"))
	assert.False(t, IsValidPhone(""))
}

func TestIsValidPhone_OnlyPlainSpaces(t *testing.T) {
	assert.True(t, IsValidPhone("555 123 4567"))
	for _, s := range []string{"555\t1234567", "555-1234\n", "555\r\n1234", "555\v1234567"} {
		assert.False(t, IsValidPhone(s), "%q", s)
	}
}

func TestIsValidPostalCode(t *testing.T) {
	assert.True(t, IsValidPostalCode("12345", "US"))
	assert.True(t, IsValidPostalCode("12345-6789", "US"))
	assert.True(t, IsValidPostalCode("12345", ""))
	assert.False(t, IsValidPostalCode("1234", "US"))
	assert.False(t, IsValidPostalCode("12345-67", "US"))
	assert.False(t, IsValidPostalCode("ABCDE", "US"))

	assert.True(t, IsValidPostalCode("SW1A 1AA", "GB"))
	assert.True(t, IsValidPostalCode("abc", "DE"))
	assert.False(t, IsValidPostalCode("ab", "DE"))
}

func validAddress() domain.Address {
	return domain.Address{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address1:   "1 Analytical Way",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestValidateAddress_Valid(t *testing.T) {
	assert.True(t, ValidateAddress("shipping", validAddress()).Empty())
}

func TestValidateAddress_MissingAndMalformed(t *testing.T) {
	a := validAddress()
	a.FirstName = " "
	a.Email = "nope"
	a.Phone = "12"
	a.PostalCode = "1234"

	errs := ValidateAddress("shipping", a)

	assert.Equal(t, []string{"shipping.email", "shipping.firstName", "shipping.phone", "shipping.postalCode"}, errs.Fields())
	assert.Equal(t, MsgRequired, errs["shipping.firstName"])
	assert.Equal(t, MsgInvalidEmail, errs["shipping.email"])
	assert.Equal(t, MsgInvalidPhone, errs["shipping.phone"])
	assert.Equal(t, MsgInvalidPostal, errs["shipping.postalCode"])
}

func TestValidateAddress_RequiredWinsOverShape(t *testing.T) {
	a := validAddress()
	a.Email = ""

	errs := ValidateAddress("billing", a)

	assert.Len(t, errs, 1)
	assert.Equal(t, MsgRequired, errs["billing.email"])
}

func TestValidateCheckout_SkipsBillingWhenSameAsShipping(t *testing.T) {
	form := domain.CheckoutForm{
		Shipping: validAddress(),
		Billing:  domain.BillingAddress{SameAsShipping: true},
	}

	assert.True(t, ValidateCheckout(form).Empty())
}

func TestValidateCheckout_ValidatesSeparateBilling(t *testing.T) {
	form := domain.CheckoutForm{
		Shipping: validAddress(),
		Billing:  domain.BillingAddress{Address: validAddress()},
	}
	form.Billing.City = ""

	errs := ValidateCheckout(form)

	assert.Equal(t, []string{"billing.city"}, errs.Fields())
}
