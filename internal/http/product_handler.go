package http

import (
	"net/http"

	"github.com/baraddmarketing/cart-checkout/internal/catalog"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog catalog.Catalog
	logger  *zap.Logger
}

func NewProductHandler(cat catalog.Catalog, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{catalog: cat, logger: logger}
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}
