package payment

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
)

var ErrMissingURL = errors.New("payment redirect has no url")

// BuildURL appends params to base, keeping any query base already carries.
func BuildURL(base string, params map[string]string) (string, error) {
	if base == "" {
		return "", ErrMissingURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid payment url %q: %w", base, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type formField struct {
	Name  string
	Value string
}

var postForm = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting to payment</title></head>
<body>
<form id="payment" method="POST" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to payment</button></noscript>
</form>
<script>document.getElementById("payment").submit();</script>
</body>
</html>
`))

// HTTPRedirector sends the shopper to the payment provider over one HTTP
// response: a 303 for GET and an auto-submitting form for POST.
type HTTPRedirector struct {
	w http.ResponseWriter
	r *http.Request
}

func NewHTTPRedirector(w http.ResponseWriter, r *http.Request) *HTTPRedirector {
	return &HTTPRedirector{w: w, r: r}
}

func (h *HTTPRedirector) Redirect(cfg domain.PaymentRedirectConfig) error {
	switch cfg.Method {
	case domain.RedirectPOST:
		return h.post(cfg)
	case domain.RedirectGET, "":
		target, err := BuildURL(cfg.URL, cfg.Params)
		if err != nil {
			return err
		}
		http.Redirect(h.w, h.r, target, http.StatusSeeOther)
		return nil
	default:
		return fmt.Errorf("unsupported redirect method %q", cfg.Method)
	}
}

func (h *HTTPRedirector) post(cfg domain.PaymentRedirectConfig) error {
	if cfg.URL == "" {
		return ErrMissingURL
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return fmt.Errorf("invalid payment url %q: %w", cfg.URL, err)
	}

	fields := make([]formField, 0, len(cfg.Params))
	for k, v := range cfg.Params {
		fields = append(fields, formField{Name: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	// Render before touching the response so a template failure leaves it
	// unwritten.
	var page bytes.Buffer
	if err := postForm.Execute(&page, struct {
		Action string
		Fields []formField
	}{Action: cfg.URL, Fields: fields}); err != nil {
		return fmt.Errorf("render payment form: %w", err)
	}

	h.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.w.Header().Set("Cache-Control", "no-store")
	h.w.WriteHeader(http.StatusOK)
	_, err := page.WriteTo(h.w)
	return err
}
