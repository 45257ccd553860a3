package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractFirstName returns the first word of a full name, used to greet the user
func ExtractFirstName(fullName string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(fullName), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// MaskName hides everything but the initials of the names after the first
// (e.g. "Tendai Farai Moyo" -> "Tendai F**** M***"). Single names keep their first letter.
func MaskName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return maskWord(parts[0])
	}

	masked := make([]string, len(parts))
	masked[0] = parts[0]
	for i := 1; i < len(parts); i++ {
		masked[i] = maskWord(parts[i])
	}
	return strings.Join(masked, " ")
}

func maskWord(word string) string {
	n := utf8.RuneCountInString(word)
	if n <= 1 {
		return word
	}
	first, _ := utf8.DecodeRuneInString(word)
	return string(first) + strings.Repeat("*", n-1)
}
