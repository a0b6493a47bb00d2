package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	OrdersTopic           = "storefront-orders"
	EventTypeOrderCreated = "order.created"
)

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type orderItem struct {
	ItemKey   string `json:"item_key"`
	ProductID string `json:"product_id"`
	Name      string `json:"product_name"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderCreatedEvent is the payload written to OrdersTopic.
type OrderCreatedEvent struct {
	OrderID   string      `json:"order_id"`
	Email     string      `json:"email"`
	Items     []orderItem `json:"items"`
	Subtotal  string      `json:"subtotal"`
	Shipping  string      `json:"shipping"`
	Tax       string      `json:"tax"`
	Discount  string      `json:"discount"`
	Total     string      `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  OrdersTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(newOrderCreatedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID), // order id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderCreated)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newOrderCreatedEvent(o *domain.Order) OrderCreatedEvent {
	ev := OrderCreatedEvent{
		OrderID:   o.ID,
		Email:     o.Shipping.Email,
		Items:     make([]orderItem, len(o.Lines)),
		Subtotal:  o.Totals.Subtotal.StringFixed(2),
		Shipping:  o.Totals.Shipping.StringFixed(2),
		Tax:       o.Totals.Tax.StringFixed(2),
		Discount:  o.Totals.Discount.StringFixed(2),
		Total:     o.Totals.Total.StringFixed(2),
		CreatedAt: o.CreatedAt,
	}
	for i, l := range o.Lines {
		ev.Items[i] = orderItem{
			ItemKey:   l.ItemKey,
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			VariantID: l.Product.VariantID(),
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price.StringFixed(2),
		}
	}
	return ev
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) PublishOrderCreated(context.Context, *domain.Order) error { return nil }
