package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate without importing
// a tokenizer.
//
// Heuristic: utf8 rune count / 3. English averages ~4 chars/token and
// Korean ~1.5, so dividing by 3 is a reasonable middle ground for the
// mixed-language shopping pages this service handles. It over-estimates
// slightly, which is the safe direction when deciding whether a payload
// risks truncating the extraction response.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
