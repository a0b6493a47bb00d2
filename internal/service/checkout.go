package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/baraddmarketing/cart-checkout/internal/cart"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
	"github.com/baraddmarketing/cart-checkout/internal/validation"
	"go.uber.org/zap"
)

// OrderCreator turns a validated checkout into an order and tells the caller
// where to send the shopper to pay. It must not modify lines.
type OrderCreator func(ctx context.Context, form domain.CheckoutForm, lines []domain.CartLine, totals domain.Totals) (*domain.Order, *domain.PaymentRedirectConfig, error)

// Redirector performs the navigation to the payment provider. The checkout
// does not wait for any response from it.
type Redirector interface {
	Redirect(cfg domain.PaymentRedirectConfig) error
}

type CheckoutResult struct {
	Order       *domain.Order
	Redirect    *domain.PaymentRedirectConfig
	FieldErrors validation.FieldErrors
	FormError   string
}

type CheckoutOptions struct {
	Policy    pricing.Policy
	Overrides pricing.Overrides
	Logger    *zap.Logger
	// OnOutcome receives "success", "empty_cart", "invalid", "failed" or "busy".
	OnOutcome func(outcome string)
}

// Checkout drives one checkout form. At most one submission is in flight at a
// time; a second Submit while the first is pending is refused.
type Checkout struct {
	store       *cart.Store
	createOrder OrderCreator
	policy      pricing.Policy
	overrides   pricing.Overrides
	logger      *zap.Logger
	onOutcome   func(string)

	submitting atomic.Bool
}

func NewCheckout(store *cart.Store, createOrder OrderCreator, opts CheckoutOptions) *Checkout {
	if store == nil {
		panic("service: NewCheckout needs a cart store")
	}
	if createOrder == nil {
		panic("service: NewCheckout needs an order creator")
	}
	if opts.Policy == (pricing.Policy{}) {
		opts.Policy = pricing.DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Checkout{
		store:       store,
		createOrder: createOrder,
		policy:      opts.Policy,
		overrides:   opts.Overrides,
		logger:      opts.Logger,
		onOutcome:   opts.OnOutcome,
	}
}

// Submitting reports whether a submission is in flight.
func (c *Checkout) Submitting() bool {
	return c.submitting.Load()
}

// Totals prices the current cart with this checkout's policy and overrides.
func (c *Checkout) Totals() domain.Totals {
	return c.policy.Totals(c.store.Lines(), c.overrides)
}

// Submit validates the form, creates the order, removes the ordered lines from
// the cart and hands the redirect to r. Items added while the order was being
// created stay in the cart. The returned result is non-nil except for
// ErrSubmissionInProgress. On ErrOrderCreation the cart is left as it was.
func (c *Checkout) Submit(ctx context.Context, form domain.CheckoutForm, r Redirector) (*CheckoutResult, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		c.outcome("busy")
		return nil, ErrSubmissionInProgress
	}
	defer c.submitting.Store(false)

	res := &CheckoutResult{FieldErrors: validation.FieldErrors{}}

	lines := c.store.Lines()
	if len(lines) == 0 {
		res.FormError = MsgEmptyCart
		c.outcome("empty_cart")
		return res, ErrEmptyCart
	}

	if errs := validation.ValidateCheckout(form); !errs.Empty() {
		res.FieldErrors = errs
		c.outcome("invalid")
		return res, ErrValidationFailed
	}

	form.Billing.Address = form.ResolvedBilling()
	totals := c.policy.Totals(lines, c.overrides)

	order, redirect, err := c.createOrder(ctx, form, lines, totals)
	if err != nil {
		c.logger.Error("order creation failed",
			zap.Int("lines", len(lines)),
			zap.String("total", totals.Total.StringFixed(2)),
			zap.Error(err))
		res.FormError = MsgOrderFailed
		c.outcome("failed")
		return res, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	c.store.RemoveOrdered(ctx, lines)
	res.Order = order
	res.Redirect = redirect
	c.outcome("success")

	if r != nil && redirect != nil {
		if err := r.Redirect(*redirect); err != nil {
			c.logger.Warn("payment redirect failed", zap.String("order_id", orderID(order)), zap.Error(err))
		}
	}

	return res, nil
}

func (c *Checkout) outcome(o string) {
	if c.onOutcome != nil {
		c.onOutcome(o)
	}
}

func orderID(o *domain.Order) string {
	if o == nil {
		return ""
	}
	return o.ID
}
