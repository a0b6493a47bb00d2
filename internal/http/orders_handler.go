package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderReader
	logger *zap.Logger
}

func NewOrdersHandler(orders OrderReader, logger *zap.Logger) *OrdersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrdersHandler{orders: orders, logger: logger}
}

// GET /api/v1/orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load order", zap.String("order_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
