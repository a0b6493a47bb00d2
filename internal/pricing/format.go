package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "en-US"
)

// FormatPrice renders amount for display in the given currency and locale.
// Empty or unparseable codes fall back to USD and en-US.
func FormatPrice(amount decimal.Decimal, currencyCode, localeTag string) string {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	if localeTag == "" {
		localeTag = DefaultLocale
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(localeTag)
	if err != nil {
		tag = language.AmericanEnglish
	}

	f, _ := amount.Float64()
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(f)))
}
