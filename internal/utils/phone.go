package utils

import (
	"strings"
)

// ZimbabweCountryPrefix is the prefix every canonical phone number starts with
const ZimbabweCountryPrefix = "+263"

// canonicalPhoneLength is len("+263") plus nine national digits
const canonicalPhoneLength = 13

// StripNonDigits removes every character that is not an ASCII decimal digit
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone converts the accepted Zimbabwe mobile formats into +263XXXXXXXXX.
// Input that matches no known format is returned unchanged; use IsAcceptablePhone
// to reject it before relying on the canonical form.
func NormalizePhone(raw string) string {
	cleaned := StripNonDigits(raw)

	switch {
	case len(cleaned) == 9 && strings.HasPrefix(cleaned, "7"):
		return ZimbabweCountryPrefix + cleaned
	case len(cleaned) == 10 && strings.HasPrefix(cleaned, "07"):
		return ZimbabweCountryPrefix + cleaned[1:]
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "2637"):
		return "+" + cleaned
	case strings.HasPrefix(raw, ZimbabweCountryPrefix) && len(raw) == canonicalPhoneLength:
		return raw
	}
	return raw
}

// IsAcceptablePhone reports whether raw is in one of the formats NormalizePhone rewrites
// into canonical form
func IsAcceptablePhone(raw string) bool {
	cleaned := StripNonDigits(raw)
	switch {
	case len(cleaned) == 9 && strings.HasPrefix(cleaned, "7"):
		return true
	case len(cleaned) == 10 && strings.HasPrefix(cleaned, "07"):
		return true
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "2637"):
		return true
	}
	return false
}

// IsCanonicalPhone reports whether s is exactly +2637 followed by eight digits
func IsCanonicalPhone(s string) bool {
	if len(s) != canonicalPhoneLength || !strings.HasPrefix(s, ZimbabweCountryPrefix+"7") {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SamePhone reports whether two user-entered numbers normalize to the same canonical phone
func SamePhone(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	if !IsCanonicalPhone(na) || !IsCanonicalPhone(nb) {
		return false
	}
	return na == nb
}
