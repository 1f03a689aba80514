package domain

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// SanitizeMessage drops every character that is not allowed in an XML 1.0
// document: C0 controls other than tab, newline and carriage return, the
// surrogate block, U+FFFE/U+FFFF and bytes that are not valid UTF-8.
func SanitizeMessage(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if isXMLChar(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9, r == 0xA, r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

// DecodeMessageBody turns a form-encoded message body into plain text. Literal
// '+' characters become spaces before percent-decoding. A body with a broken
// escape sequence is returned with only the '+' substitution applied.
func DecodeMessageBody(body string) string {
	spaced := strings.ReplaceAll(body, "+", " ")
	decoded, err := url.PathUnescape(spaced)
	if err != nil {
		return spaced
	}

	return decoded
}
