package pricing

import (
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy holds the shipping and tax rules applied when the caller does not
// override them.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.RequireFromString("5.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Overrides replace the computed shipping or tax, and add a discount.
// Nil fields fall back to the policy (or zero for the discount).
type Overrides struct {
	Shipping *decimal.Decimal
	Tax      *decimal.Decimal
	Discount *decimal.Decimal
}

func Subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func ItemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// ShippingCost is free at or above the threshold, flat otherwise.
func (p Policy) ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}

func (p Policy) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// Totals computes subtotal, shipping, tax and total for the lines.
// The discount is subtracted as given; a discount larger than the rest yields
// a negative total.
func (p Policy) Totals(lines []domain.CartLine, o Overrides) domain.Totals {
	subtotal := Subtotal(lines)

	shipping := p.ShippingCost(subtotal)
	if o.Shipping != nil {
		shipping = *o.Shipping
	}
	tax := p.Tax(subtotal)
	if o.Tax != nil {
		tax = *o.Tax
	}
	discount := decimal.Zero
	if o.Discount != nil {
		discount = *o.Discount
	}

	return domain.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}

// ShippingCost applies the default policy.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	return DefaultPolicy().ShippingCost(subtotal)
}

// Tax applies the default policy.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return DefaultPolicy().Tax(subtotal)
}

// Totals applies the default policy with no overrides.
func Totals(lines []domain.CartLine) domain.Totals {
	return DefaultPolicy().Totals(lines, Overrides{})
}
