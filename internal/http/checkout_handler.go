package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/baraddmarketing/cart-checkout/internal/cart"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/payment"
	"github.com/baraddmarketing/cart-checkout/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RedirectorFunc builds the redirector for one checkout request.
type RedirectorFunc func(w http.ResponseWriter, r *http.Request) service.Redirector

type checkoutEntry struct {
	store *cart.Store
	co    *service.Checkout
}

type CheckoutHandler struct {
	createOrder   service.OrderCreator
	opts          service.CheckoutOptions
	logger        *zap.Logger
	newRedirector RedirectorFunc

	mu        sync.Mutex
	checkouts map[string]checkoutEntry
}

func NewCheckoutHandler(createOrder service.OrderCreator, opts service.CheckoutOptions) *CheckoutHandler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CheckoutHandler{
		createOrder: createOrder,
		opts:        opts,
		logger:      opts.Logger,
		newRedirector: func(w http.ResponseWriter, r *http.Request) service.Redirector {
			return payment.NewHTTPRedirector(w, r)
		},
		checkouts: make(map[string]checkoutEntry),
	}
}

type CheckoutResponseDTO struct {
	OrderID string        `json:"order_id"`
	Totals  domain.Totals `json:"totals"`
}

// checkoutFor returns the checkout of the request's session so that its
// in-flight latch is shared by every request of that session. A session whose
// store was evicted and recreated gets a fresh checkout.
func (h *CheckoutHandler) checkoutFor(r *http.Request) *service.Checkout {
	store := StoreFromContext(r.Context())
	sessionID := SessionIDFromContext(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.checkouts[sessionID]
	if !ok || e.store != store {
		e = checkoutEntry{store: store, co: service.NewCheckout(store, h.createOrder, h.opts)}
		h.checkouts[sessionID] = e
	}
	return e.co
}

// Forget drops the checkout of sessionID. It is registered as the cart
// registry's eviction hook.
func (h *CheckoutHandler) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checkouts, sessionID)
}

func (h *CheckoutHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.checkouts)
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	co := h.checkoutFor(r)
	respondJSON(w, http.StatusOK, co.Totals())
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	co := h.checkoutFor(r)

	var form domain.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	res, err := co.Submit(r.Context(), form, h.newRedirector(ww, r))
	switch {
	case errors.Is(err, service.ErrSubmissionInProgress):
		respondError(w, http.StatusConflict, "submission_in_progress", "checkout already in progress")
		return
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", res.FormError)
		return
	case errors.Is(err, service.ErrValidationFailed):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "checkout form has invalid fields",
			Code:   "invalid_fields",
			Fields: res.FieldErrors,
		})
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "order_failed", res.FormError)
		return
	}

	// A redirector that started the response owns it, even if it failed.
	if ww.Status() != 0 {
		return
	}
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: res.Order.ID,
		Totals:  res.Order.Totals,
	})
}
