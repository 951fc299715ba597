package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name usable as a single path element. Separators,
// drive colons and asterisks become dashes, shell-hostile punctuation and
// control characters are dropped, and whitespace runs collapse to one
// underscore. Leading and trailing dots, dashes and underscores are trimmed.
func SanitizeFileName(name string) string {
	joined := strings.Join(strings.Fields(name), "_")
	return strings.Trim(strings.Map(fileNameRune, joined), "._-")
}

func fileNameRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|':
		return -1
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}

// SanitizeToken lowercases value into an ASCII token of letters, digits,
// dashes and underscores. Any other rune becomes an underscore. Returns
// "unknown" when nothing survives.
func SanitizeToken(value string) string {
	token := strings.Map(tokenRune, strings.TrimSpace(value))
	token = strings.Trim(token, "_-")
	if token == "" {
		return "unknown"
	}
	return token
}

func tokenRune(r rune) rune {
	r = unicode.ToLower(r)
	switch {
	case r > unicode.MaxASCII:
		return '_'
	case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
		return r
	default:
		return '_'
	}
}
