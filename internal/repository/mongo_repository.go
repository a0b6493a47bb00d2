package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Amounts are stored as decimal strings so they round-trip exactly.
type orderDocument struct {
	ID           string            `bson:"_id"`
	Lines        []lineDocument    `bson:"lines"`
	Shipping     domain.Address    `bson:"shipping_address"`
	Billing      domain.Address    `bson:"billing_address"`
	Subtotal     string            `bson:"subtotal"`
	ShippingCost string            `bson:"shipping_cost"`
	Tax          string            `bson:"tax"`
	Discount     string            `bson:"discount"`
	Total        string            `bson:"total"`
	Notes        string            `bson:"notes,omitempty"`
	CreatedAt    time.Time         `bson:"created_at"`
	Metadata     map[string]string `bson:"metadata,omitempty"`
}

type lineDocument struct {
	ItemKey     string `bson:"item_key"`
	ProductID   string `bson:"product_id"`
	ProductName string `bson:"product_name"`
	SKU         string `bson:"sku,omitempty"`
	Image       string `bson:"image,omitempty"`
	VariantID   string `bson:"variant_id,omitempty"`
	VariantName string `bson:"variant_name,omitempty"`
	UnitPrice   string `bson:"unit_price"`
	Quantity    int    `bson:"quantity"`

	VariantOptions []optionDocument `bson:"variant_options,omitempty"`
	Metadata       map[string]any   `bson:"metadata,omitempty"`
}

type optionDocument struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

var _ OrderRepository = (*MongoRepository)(nil)

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("orders"),
	}
}

// Close disconnects the client the repository was opened with.
func (m *MongoRepository) Close(ctx context.Context) error {
	return m.collection.Database().Client().Disconnect(ctx)
}

func (m *MongoRepository) SaveOrder(ctx context.Context, order *domain.Order) error {
	_, err := m.collection.InsertOne(ctx, toDocument(order))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDocument

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return fromDocument(&doc)
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "shipping_address.email", Value: 1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes, options.CreateIndexes())
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func toDocument(o *domain.Order) *orderDocument {
	doc := &orderDocument{
		ID:           o.ID,
		Lines:        make([]lineDocument, len(o.Lines)),
		Shipping:     o.Shipping,
		Billing:      o.Billing,
		Subtotal:     o.Totals.Subtotal.String(),
		ShippingCost: o.Totals.Shipping.String(),
		Tax:          o.Totals.Tax.String(),
		Discount:     o.Totals.Discount.String(),
		Total:        o.Totals.Total.String(),
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt.UTC(),
		Metadata:     o.Metadata,
	}

	for i, l := range o.Lines {
		ld := lineDocument{
			ItemKey:     l.ItemKey,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			SKU:         l.Product.SKU,
			Image:       l.Product.Image,
			UnitPrice:   l.Product.Price.String(),
			Quantity:    l.Quantity,
			Metadata:    l.Product.Clone().Metadata,
		}
		if v := l.Product.Variant; v != nil {
			ld.VariantID = v.ID
			ld.VariantName = v.Name
			for _, o := range v.Options {
				ld.VariantOptions = append(ld.VariantOptions, optionDocument{Name: o.Name, Value: o.Value})
			}
		}
		doc.Lines[i] = ld
	}

	return doc
}

func fromDocument(doc *orderDocument) (*domain.Order, error) {
	amounts := make([]decimal.Decimal, 5)
	for i, s := range []string{doc.Subtotal, doc.ShippingCost, doc.Tax, doc.Discount, doc.Total} {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("order %s has malformed amount %q: %w", doc.ID, s, err)
		}
		amounts[i] = v
	}

	order := &domain.Order{
		ID:       doc.ID,
		Lines:    make([]domain.CartLine, len(doc.Lines)),
		Shipping: doc.Shipping,
		Billing:  doc.Billing,
		Totals: domain.Totals{
			Subtotal: amounts[0],
			Shipping: amounts[1],
			Tax:      amounts[2],
			Discount: amounts[3],
			Total:    amounts[4],
		},
		Notes:     doc.Notes,
		CreatedAt: doc.CreatedAt,
		Metadata:  doc.Metadata,
	}

	for i, ld := range doc.Lines {
		price, err := decimal.NewFromString(ld.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("order %s has malformed unit price %q: %w", doc.ID, ld.UnitPrice, err)
		}
		p := domain.Product{
			ID:       ld.ProductID,
			Name:     ld.ProductName,
			Price:    price,
			SKU:      ld.SKU,
			Image:    ld.Image,
			Metadata: ld.Metadata,
		}
		if ld.VariantID != "" {
			p.Variant = &domain.ProductVariant{ID: ld.VariantID, Name: ld.VariantName}
			for _, o := range ld.VariantOptions {
				p.Variant.Options = append(p.Variant.Options, domain.VariantOption{Name: o.Name, Value: o.Value})
			}
		}
		order.Lines[i] = domain.CartLine{Product: p, Quantity: ld.Quantity, ItemKey: ld.ItemKey}
	}

	return order, nil
}
