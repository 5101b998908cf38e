// Package text provides small text-measurement helpers shared by the
// summarization backends and the notification formatter. Counting and
// truncation operate on runes so Japanese article bodies and summaries
// are measured by character, not by byte.
package text

// CountRunes returns the number of Unicode characters in s.
//
// Examples:
//
//	CountRunes("hello")     // 5
//	CountRunes("こんにちは")  // 5
//	CountRunes("")          // 0
func CountRunes(s string) int {
	return len([]rune(s))
}

// TruncateRunes returns s cut to at most limit characters. The cut
// happens on a rune boundary, so a multi-byte character is never
// split. A non-positive limit returns the empty string.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
