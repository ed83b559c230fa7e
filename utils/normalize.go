package utils

import "strings"

// NormalizeText strips every rune outside the portable printable ASCII
// range. Tabs, newlines and carriage returns survive so downstream patterns
// still see line breaks and multi-space runs; nothing is collapsed.
// Unencodable sequences are dropped, not replaced with markers, which makes
// the function idempotent.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 0x20 && r <= 0x7e) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
