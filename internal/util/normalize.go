package util

import (
	"net/mail"
	"strings"
)

// ParseFrom splits an RFC 5322 "From" value like "Name <user@Example.COM>"
// into a display name and an address. When the header carries no display
// name, the name falls back to the address local part. When the value does
// not parse at all, the raw header is returned as both name and address so
// callers still have a stable grouping key.
func ParseFrom(fromHeader string) (name, addr string) {
	fromHeader = strings.TrimSpace(fromHeader)
	if fromHeader == "" {
		return "", ""
	}
	parsed, err := mail.ParseAddress(fromHeader)
	if err != nil || parsed == nil {
		// Some headers are a list; take the first parsable entry.
		for _, p := range strings.Split(fromHeader, ",") {
			if a, e := mail.ParseAddress(strings.TrimSpace(p)); e == nil && a != nil {
				parsed = a
				break
			}
		}
	}
	if parsed == nil {
		return fromHeader, fromHeader
	}
	addr = strings.TrimSpace(parsed.Address)
	name = strings.TrimSpace(parsed.Name)
	if name == "" {
		name = DisplayNameFromAddress(addr)
	}
	return name, addr
}

// DisplayNameFromAddress derives a fallback display name from the local part
// of an address. "billing@acme.com" becomes "billing".
func DisplayNameFromAddress(addr string) string {
	if at := strings.IndexByte(addr, '@'); at > 0 {
		return addr[:at]
	}
	return addr
}

// NormalizeAddress lowercases an address for use as a grouping key. Aliases
// and dots are preserved; two spellings group together only when they differ
// by case alone.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// CollapseWhitespace flattens runs of whitespace (including newlines) into
// single spaces, for snippet display on a single line.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
