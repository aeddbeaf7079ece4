// Package contact normalizes phone numbers and e-mail addresses so the same
// person reached through different spreadsheets compares equal.
package contact

import (
	"strings"
	"unicode"
)

// vendorPrefix is emitted by some ad-platform exports in front of phone numbers ("p:+15550100").
const vendorPrefix = "p:"

// StripVendorPrefix removes a leading "p:" token (any case) and surrounding spaces.
func StripVendorPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(vendorPrefix) && strings.EqualFold(s[:len(vendorPrefix)], vendorPrefix) {
		s = s[len(vendorPrefix):]
	}
	return strings.TrimSpace(s)
}

// NormalizePhone keeps digits and a leading '+'. The vendor prefix is dropped first.
func NormalizePhone(s string) string {
	s = StripVendorPrefix(s)

	var result strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			result.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			result.WriteRune(r)
		}
	}

	out := result.String()
	if out == "+" {
		return ""
	}
	return out
}

// NormalizeEmail lowercases and trims.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
