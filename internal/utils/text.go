package utils

import (
	"strings"
	"unicode"
)

// IsSkippableText reports whether a message is not worth translating.
// After stripping spaces, periods, and commas, text that is empty or
// consists only of digits is skipped.
func IsSkippableText(text string) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', ',', '　', '。', '，':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if stripped == "" {
		return true
	}
	for _, r := range stripped {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
