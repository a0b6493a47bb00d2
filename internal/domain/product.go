package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry as captured when it was placed in the cart.
// Later catalog changes do not reach lines that already hold a copy.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	SKU      string          `json:"sku,omitempty"`
	Variant  *ProductVariant `json:"variant,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// VariantOption is a single option-name/option-value pair such as size=M.
type VariantOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductVariant struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Options []VariantOption `json:"options,omitempty"`
}

// VariantID returns the variant id or "" when the product has no variant.
func (p Product) VariantID() string {
	if p.Variant == nil {
		return ""
	}
	return p.Variant.ID
}

// Clone copies the product so the caller can hand it to a cart without
// sharing the variant options or metadata.
func (p Product) Clone() Product {
	c := p
	if p.Variant != nil {
		v := *p.Variant
		v.Options = append([]VariantOption(nil), p.Variant.Options...)
		c.Variant = &v
	}
	if p.Metadata != nil {
		c.Metadata = make(map[string]any, len(p.Metadata))
		for k, val := range p.Metadata {
			c.Metadata[k] = val
		}
	}
	return c
}
