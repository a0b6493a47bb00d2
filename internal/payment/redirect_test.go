package payment

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	got, err := BuildURL("https://pay.example.com/start?merchant=42", map[string]string{
		"order_id": "ORD-1-ABCDE",
		"amount":   "97.17",
	})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "pay.example.com", u.Host)
	assert.Equal(t, "/start", u.Path)
	assert.Equal(t, "42", u.Query().Get("merchant"))
	assert.Equal(t, "ORD-1-ABCDE", u.Query().Get("order_id"))
	assert.Equal(t, "97.17", u.Query().Get("amount"))
}

func TestBuildURL_Errors(t *testing.T) {
	_, err := BuildURL("", nil)
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = BuildURL("://bad", nil)
	assert.Error(t, err)
}

func TestRedirect_GET(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

	err := NewHTTPRedirector(w, r).Redirect(domain.PaymentRedirectConfig{
		URL:    "https://pay.example.com/start",
		Method: domain.RedirectGET,
		Params: map[string]string{"order_id": "ORD-1-ABCDE"},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://pay.example.com/start?order_id=ORD-1-ABCDE", w.Header().Get("Location"))
}

func TestRedirect_POST(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

	err := NewHTTPRedirector(w, r).Redirect(domain.PaymentRedirectConfig{
		URL:    "https://pay.example.com/start",
		Method: domain.RedirectPOST,
		Params: map[string]string{
			"order_id": "ORD-1-ABCDE",
			"amount":   "97.17",
			"note":     `"><script>`,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, `action="https://pay.example.com/start"`)
	assert.Contains(t, body, `name="order_id" value="ORD-1-ABCDE"`)
	assert.NotContains(t, body, `"><script>`)
	assert.Less(t, strings.Index(body, `name="amount"`), strings.Index(body, `name="order_id"`))
}

func TestRedirect_UnknownMethod(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	err := NewHTTPRedirector(w, r).Redirect(domain.PaymentRedirectConfig{URL: "https://x", Method: "PUT"})
	assert.Error(t, err)
}

type headerSpy struct {
	http.ResponseWriter
	statuses []int
}

func (s *headerSpy) WriteHeader(code int) {
	s.statuses = append(s.statuses, code)
	s.ResponseWriter.WriteHeader(code)
}

func TestRedirect_POSTFailureLeavesResponseUnwritten(t *testing.T) {
	for _, url := range []string{"", "http://[::1"} {
		rec := httptest.NewRecorder()
		spy := &headerSpy{ResponseWriter: rec}
		r := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)

		err := NewHTTPRedirector(spy, r).Redirect(domain.PaymentRedirectConfig{
			URL:    url,
			Method: domain.RedirectPOST,
		})

		require.Error(t, err, url)
		assert.Empty(t, spy.statuses, url)
		assert.Zero(t, rec.Body.Len(), url)
		assert.Empty(t, rec.Header().Get("Content-Type"), url)
	}
}
