// Package formenc builds application/x-www-form-urlencoded bodies with a
// stricter escape set than net/url: everything except unreserved characters,
// '/' and '?' is percent-encoded, and spaces become %20.
package formenc

import (
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

func allowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', '?':
		return true
	}
	return false
}

// Escape percent-encodes every byte of s outside the allowed set.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !allowed(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if allowed(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// Encode renders params as key=value pairs joined by '&', sorted by key.
func Encode(params map[string]string) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(Escape(k))
		b.WriteByte('=')
		b.WriteString(Escape(params[k]))
	}
	return []byte(b.String())
}
