package service

import (
	"context"
	"sync"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/repository"
	"github.com/shopspring/decimal"
)

// MockRepository implements repository.OrderRepository for testing
type MockRepository struct {
	mu       sync.Mutex
	SaveErrs []error // returned in order, one per SaveOrder call
	Saved    []*domain.Order
	Calls    int
}

func (m *MockRepository) SaveOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if len(m.SaveErrs) > 0 {
		err := m.SaveErrs[0]
		m.SaveErrs = m.SaveErrs[1:]
		if err != nil {
			return err
		}
	}
	cp := *order
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.Saved {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

// MockPublisher records published orders
type MockPublisher struct {
	Err       error
	Published []string
}

func (m *MockPublisher) PublishOrderCreated(_ context.Context, order *domain.Order) error {
	m.Published = append(m.Published, order.ID)
	return m.Err
}

// MockRedirector captures the redirect handed over by checkout
type MockRedirector struct {
	Got *domain.PaymentRedirectConfig
	Err error
}

func (m *MockRedirector) Redirect(cfg domain.PaymentRedirectConfig) error {
	m.Got = &cfg
	return m.Err
}

func testProduct(id, price string) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price)}
}

func validAddress() domain.Address {
	return domain.Address{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      "+1 (555) 010-2030",
		Address1:   "1 Analytical Way",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func validForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		Shipping: validAddress(),
		Billing:  domain.BillingAddress{SameAsShipping: true},
		Notes:    "leave at the door",
	}
}
