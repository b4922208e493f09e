package stringutils

import "unicode/utf8"

// Head returns the first n characters (runes) of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// OrDefault returns s if it's not empty, or def if s is empty.
func OrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
