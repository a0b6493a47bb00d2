package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
	"github.com/baraddmarketing/cart-checkout/internal/publisher"
	"github.com/baraddmarketing/cart-checkout/internal/repository"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxIDAttempts = 3

// PaymentConfig describes where shoppers are sent after an order is placed.
type PaymentConfig struct {
	URL      string
	Method   domain.RedirectMethod
	Currency string
}

// OrderService is the backend side of checkout: it stores the order,
// announces it and builds the payment redirect.
type OrderService struct {
	repo    repository.OrderRepository
	events  publisher.EventPublisher
	payment PaymentConfig
	cb      *gobreaker.CircuitBreaker[*domain.Order]
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewOrderService(repo repository.OrderRepository, events publisher.EventPublisher, payment PaymentConfig, logger *zap.Logger) *OrderService {
	if events == nil {
		events = publisher.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if payment.Currency == "" {
		payment.Currency = pricing.DefaultCurrency
	}

	settings := gobreaker.Settings{
		Name:        "order-repository",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// duplicate ids are retried here, they say nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrDuplicateOrder)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &OrderService{
		repo:    repo,
		events:  events,
		payment: payment,
		cb:      gobreaker.NewCircuitBreaker[*domain.Order](settings),
		logger:  logger,
		now:     time.Now,
		newID:   pricing.GenerateOrderID,
	}
}

// CreateOrder satisfies OrderCreator.
func (s *OrderService) CreateOrder(ctx context.Context, form domain.CheckoutForm, lines []domain.CartLine, totals domain.Totals) (*domain.Order, *domain.PaymentRedirectConfig, error) {
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	order := &domain.Order{
		Lines:     domain.CloneLines(lines),
		Shipping:  form.Shipping,
		Billing:   form.ResolvedBilling(),
		Totals:    totals,
		Notes:     form.Notes,
		CreatedAt: s.now().UTC(),
		Metadata:  form.Metadata,
	}

	saved, err := s.save(ctx, order)
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.PublishOrderCreated(ctx, saved); err != nil {
		s.logger.Error("failed to publish order event", zap.String("order_id", saved.ID), zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("order_id", saved.ID),
		zap.Int("lines", len(saved.Lines)),
		zap.String("total", saved.Totals.Total.StringFixed(2)))

	return saved, s.redirectFor(saved), nil
}

func (s *OrderService) save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	for attempt := 1; ; attempt++ {
		order.ID = s.newID()
		saved, err := s.cb.Execute(func() (*domain.Order, error) {
			if err := s.repo.SaveOrder(ctx, order); err != nil {
				return nil, err
			}
			return order, nil
		})
		if err == nil {
			return saved, nil
		}
		if errors.Is(err, repository.ErrDuplicateOrder) && attempt < maxIDAttempts {
			s.logger.Warn("order id collision, retrying", zap.String("order_id", order.ID))
			continue
		}
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
}

// redirectFor returns nil when no payment gateway is configured.
func (s *OrderService) redirectFor(o *domain.Order) *domain.PaymentRedirectConfig {
	if s.payment.URL == "" {
		return nil
	}
	return &domain.PaymentRedirectConfig{
		URL:    s.payment.URL,
		Method: s.payment.Method,
		Params: map[string]string{
			"order_id": o.ID,
			"amount":   o.Totals.Total.StringFixed(2),
			"currency": s.payment.Currency,
		},
	}
}

// GetOrder loads a previously placed order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}
