// Package validation holds the checkout field predicates and the form rules
// built on top of them. The predicates are shape checks only.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const defaultRegion = "US"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9 \-+()]{7,}$`)
	usPostalCode = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// IsValidEmail accepts local@domain.tld with no whitespace. It does not try to
// follow RFC 5322.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone accepts 7 or more digits, spaces, hyphens, pluses or parentheses.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsValidPostalCode checks US ZIP and ZIP+4. Any other country only needs
// three characters. An empty country code means US.
func IsValidPostalCode(s, countryCode string) bool {
	if countryCode == "" {
		countryCode = defaultRegion
	}
	if strings.EqualFold(countryCode, "US") {
		return usPostalCode.MatchString(s)
	}
	return utf8.RuneCountInString(s) >= 3
}
