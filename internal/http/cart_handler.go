package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baraddmarketing/cart-checkout/internal/catalog"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	catalog  catalog.Catalog
	policy   pricing.Policy
	currency string
	locale   string
	logger   *zap.Logger
}

func NewCartHandler(cat catalog.Catalog, policy pricing.Policy, currency, locale string, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		catalog:  cat,
		policy:   policy,
		currency: currency,
		locale:   locale,
		logger:   logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponseDTO struct {
	Lines             []domain.CartLine `json:"lines"`
	ItemCount         int               `json:"item_count"`
	IsDrawerOpen      bool              `json:"is_drawer_open"`
	IsLoading         bool              `json:"is_loading"`
	Totals            domain.Totals     `json:"totals"`
	FormattedSubtotal string            `json:"formatted_subtotal"`
	FormattedTotal    string            `json:"formatted_total"`
}

func (h *CartHandler) cartResponse(snap domain.Snapshot) CartResponseDTO {
	lines := snap.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	totals := h.policy.Totals(lines, pricing.Overrides{})
	return CartResponseDTO{
		Lines:             lines,
		ItemCount:         pricing.ItemCount(lines),
		IsDrawerOpen:      snap.IsDrawerOpen,
		IsLoading:         snap.IsLoading,
		Totals:            totals,
		FormattedSubtotal: pricing.FormatPrice(totals.Subtotal, h.currency, h.locale),
		FormattedTotal:    pricing.FormatPrice(totals.Total, h.currency, h.locale),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(store.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID, req.VariantID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		h.logger.Error("catalog lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	// quantity below 1 is treated as 1 by the cart
	snap := store.AddItem(r.Context(), product, req.Quantity)
	respondJSON(w, http.StatusCreated, h.cartResponse(snap))
}

// PUT /api/v1/cart/items/{itemKey}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	itemKey := chi.URLParam(r, "itemKey")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if _, ok := store.Item(itemKey); !ok {
		respondError(w, http.StatusNotFound, "not_found", "item not in cart")
		return
	}

	snap := store.UpdateQuantity(r.Context(), itemKey, *req.Quantity)
	respondJSON(w, http.StatusOK, h.cartResponse(snap))
}

// DELETE /api/v1/cart/items/{itemKey}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	snap := store.RemoveItem(r.Context(), chi.URLParam(r, "itemKey"))
	respondJSON(w, http.StatusOK, h.cartResponse(snap))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(store.ClearCart(r.Context())))
}

func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(store.OpenCart(r.Context())))
}

func (h *CartHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(store.CloseCart(r.Context())))
}

func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.cartResponse(store.ToggleCart(r.Context())))
}
