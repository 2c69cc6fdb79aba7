// Package text provides utilities for text processing and analysis.
// This package includes reusable functions for character counting, word counting
// and prompt-budget truncation that are shared across the extraction pipeline and
// the LLM generation services.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters including accented
// letters, CJK text and emoji by counting runes instead of bytes.
//
// Examples:
//
//	CountRunes("hello")     // returns 5 (ASCII text)
//	CountRunes("héllo")     // returns 5 (accented text)
//	CountRunes("")          // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}

// CountWords counts whitespace-separated words in the given text.
// It is used to fill the word-count field of material metadata after
// extraction; consecutive whitespace is treated as a single separator.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
