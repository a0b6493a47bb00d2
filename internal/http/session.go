package http

import (
	"context"
	"net/http"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/cart"
	"github.com/google/uuid"
)

const (
	SessionCookie = "cart_session"
	sessionMaxAge = 30 * 24 * time.Hour
)

type ctxKey int

const (
	storeKey ctxKey = iota
	sessionKey
)

// SessionMiddleware attaches the shopper's cart store to the request context,
// issuing a new session cookie when the request carries none.
func SessionMiddleware(registry *cart.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					sessionID = id.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			store := registry.Store(r.Context(), sessionID)
			ctx := context.WithValue(r.Context(), sessionKey, sessionID)
			ctx = context.WithValue(ctx, storeKey, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext returns the cart store SessionMiddleware attached. Calling
// it outside that middleware is a programming error.
func StoreFromContext(ctx context.Context) *cart.Store {
	s, ok := ctx.Value(storeKey).(*cart.Store)
	if !ok || s == nil {
		panic("http: cart store requested outside SessionMiddleware")
	}
	return s
}

func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
