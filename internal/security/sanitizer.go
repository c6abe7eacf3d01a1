package security

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxDisplayNameLength = 48

// SanitizeString removes potentially dangerous characters
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Limit length
	if len(input) > 1000 {
		input = input[:1000]
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// SanitizeDisplayName cleans a player-supplied village/worker/visitor name:
// strips markup, control characters and bounds the length.
func SanitizeDisplayName(input string) string {
	input = SanitizeHTML(SanitizeString(input))

	var b strings.Builder
	for _, r := range input {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	name := strings.TrimSpace(b.String())

	for utf8.RuneCountInString(name) > maxDisplayNameLength {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}

// ValidateDisplayName reports whether a sanitized name is usable.
func ValidateDisplayName(name string) bool {
	return name != "" && utf8.RuneCountInString(name) <= maxDisplayNameLength
}
