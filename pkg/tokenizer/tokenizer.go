// Package tokenizer estimates token counts for usage accounting when a
// provider does not report them.
package tokenizer

import (
	"strings"
)

// Estimate approximates the token count of text at roughly four tokens per
// three words. Non-empty text counts at least one token.
func Estimate(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(words*4/3, 1)
}

// EstimateMessages sums Estimate over several message bodies.
func EstimateMessages(contents ...string) int {
	n := 0
	for _, c := range contents {
		n += Estimate(c)
	}
	return n
}
