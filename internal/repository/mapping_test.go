package repository

import (
	"testing"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID: "ORD-LX2A9-K3J9Q",
		Lines: []domain.CartLine{
			{
				Product: domain.Product{
					ID:    "shirt",
					Name:  "Shirt",
					Price: decimal.RequireFromString("29.99"),
					SKU:   "SH-1",
					Variant: &domain.ProductVariant{
						ID:   "M",
						Name: "Medium",
						Options: []domain.VariantOption{
							{Name: "Size", Value: "M"},
							{Name: "Color", Value: "Black"},
						},
					},
					Metadata: map[string]any{"category": "apparel"},
				},
				Quantity: 3,
				ItemKey:  "shirt-M",
			},
		},
		Shipping: domain.Address{FirstName: "Ada", Email: "ada@example.com", Country: "US"},
		Billing:  domain.Address{FirstName: "Ada", Email: "ada@example.com", Country: "US"},
		Totals: domain.Totals{
			Subtotal: decimal.RequireFromString("89.97"),
			Shipping: decimal.Zero,
			Tax:      decimal.RequireFromString("7.1976"),
			Discount: decimal.Zero,
			Total:    decimal.RequireFromString("97.1676"),
		},
		Notes:     "leave at door",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Metadata:  map[string]string{"channel": "web"},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	order := sampleOrder()

	doc := toDocument(order)
	assert.Equal(t, "89.97", doc.Subtotal)
	assert.Equal(t, "97.1676", doc.Total)
	assert.Equal(t, "M", doc.Lines[0].VariantID)

	back, err := fromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, order.ID, back.ID)
	assert.True(t, order.Totals.Total.Equal(back.Totals.Total))
	assert.True(t, order.Totals.Tax.Equal(back.Totals.Tax))
	assert.Equal(t, "shirt-M", back.Lines[0].ItemKey)
	assert.Equal(t, "M", back.Lines[0].Product.VariantID())
	assert.True(t, back.Lines[0].Product.Price.Equal(decimal.RequireFromString("29.99")))
	assert.Equal(t, order.Shipping, back.Shipping)
	assert.Equal(t, order.Metadata, back.Metadata)
	assert.Equal(t, order.Lines[0].Product.Variant.Options, back.Lines[0].Product.Variant.Options)
	assert.Equal(t, "apparel", back.Lines[0].Product.Metadata["category"])
}

func TestDocumentRoundTrip_PlainProduct(t *testing.T) {
	order := sampleOrder()
	order.Lines[0].Product.Variant = nil
	order.Lines[0].Product.Metadata = nil

	back, err := fromDocument(toDocument(order))
	require.NoError(t, err)
	assert.Nil(t, back.Lines[0].Product.Variant)
	assert.Empty(t, back.Lines[0].Product.Metadata)
}

func TestFromDocument_MalformedAmount(t *testing.T) {
	doc := toDocument(sampleOrder())
	doc.Total = "lots"

	_, err := fromDocument(doc)
	require.ErrorContains(t, err, "malformed amount")
}
