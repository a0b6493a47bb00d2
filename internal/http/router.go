package http

import (
	"net/http"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/cart"
	"github.com/baraddmarketing/cart-checkout/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Registry       *cart.Registry
	Cart           *CartHandler
	Products       *ProductHandler
	Checkout       *CheckoutHandler
	Orders         *OrdersHandler
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20 // 1MB
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Products != nil {
			r.Get("/products", cfg.Products.ListProducts)
		}
		if cfg.Orders != nil {
			r.Get("/orders/{id}", cfg.Orders.GetOrder)
		}

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Registry))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cfg.Cart.GetCart)
				r.Delete("/", cfg.Cart.ClearCart)
				r.Post("/items", cfg.Cart.AddItem)
				r.Put("/items/{itemKey}", cfg.Cart.UpdateQuantity)
				r.Delete("/items/{itemKey}", cfg.Cart.RemoveItem)
				r.Post("/open", cfg.Cart.OpenCart)
				r.Post("/close", cfg.Cart.CloseCart)
				r.Post("/toggle", cfg.Cart.ToggleCart)
			})

			if cfg.Checkout != nil {
				r.Get("/checkout", cfg.Checkout.Summary)
				r.Post("/checkout", cfg.Checkout.Submit)
			}
		})
	})

	return r
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
