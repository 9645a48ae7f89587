package formatting

import "strings"

// Words splits s on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// TruncateWords returns the first n words of s joined by single spaces.
// Returns s with whitespace normalized when it has n words or fewer; a
// non-positive n yields "".
func TruncateWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
