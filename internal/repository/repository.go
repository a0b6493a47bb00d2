package repository

import (
	"context"
	"errors"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already exists")
)

// OrderRepository stores orders created at checkout.
// Consumers define this interface, not the MongoDB implementation
type OrderRepository interface {
	SaveOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}
