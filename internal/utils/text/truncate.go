package text

import "unicode/utf8"

// CharsPerToken is the character-per-token approximation used to bound prompt
// size without a tokenizer dependency. Four characters per token is a safe
// average for English prose and errs on the short side for CJK text.
const CharsPerToken = 4

// DefaultTokenBudget is the default prompt budget for extracted content,
// leaving headroom below common 32k-token context windows for the instruction
// scaffolding around the content.
const DefaultTokenBudget = 16000

// TruncationMarker is inserted where the middle of an over-budget document was
// discarded.
const TruncationMarker = "...[content truncated]..."

// TruncateForPrompt bounds s to budgetTokens using the CharsPerToken
// approximation. Text at or under budget is returned unchanged. Over-budget
// text keeps the first third and last third of the allowed character budget
// joined by TruncationMarker, discarding the middle; introductions and
// conclusions carry most of the summarizable signal, so both ends are worth
// more than the body.
//
// A budgetTokens value of zero or less falls back to DefaultTokenBudget.
func TruncateForPrompt(s string, budgetTokens int) string {
	if budgetTokens <= 0 {
		budgetTokens = DefaultTokenBudget
	}
	budget := budgetTokens * CharsPerToken
	if len(s) <= budget {
		return s
	}

	keep := budget / 3

	// Back each cut off to a rune boundary so multi-byte characters are
	// dropped whole rather than split. Both adjustments shrink the kept
	// slices, keeping the result within budget.
	head := keep
	for head > 0 && !utf8.RuneStart(s[head]) {
		head--
	}
	tail := len(s) - keep
	for tail < len(s) && !utf8.RuneStart(s[tail]) {
		tail++
	}
	return s[:head] + TruncationMarker + s[tail:]
}
