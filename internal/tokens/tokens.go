// Package tokens provides coarse token-budget estimation.
//
// This is deliberately not a real tokenizer. The divisor-of-four heuristic
// (1 token ≈ 4 chars) is the same approximation used throughout the memory
// pipeline; callers must treat results as an order-of-magnitude signal only.
package tokens

const (
	// CharsPerToken is the approximate character-to-token ratio.
	CharsPerToken = 4

	// ContextWindow is the assumed usable context ceiling in tokens.
	ContextWindow = 200_000
)

// Estimate returns an approximate token count for text, rounded up.
func Estimate(text string) int {
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}

// BudgetPercent returns the share of the context window that estimatedTokens
// occupies, as a percentage. Never negative; values above 100 are meaningful
// and signal the content already exceeds the usable window.
func BudgetPercent(estimatedTokens int) float64 {
	if estimatedTokens <= 0 {
		return 0
	}
	return float64(estimatedTokens) / float64(ContextWindow) * 100
}
