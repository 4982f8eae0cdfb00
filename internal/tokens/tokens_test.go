package tokens

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 100), 25},
		{strings.Repeat("x", 101), 26},
	}

	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestBudgetPercent(t *testing.T) {
	tests := []struct {
		tokens int
		want   float64
	}{
		{0, 0},
		{-100, 0},
		{100_000, 50},
		{200_000, 100},
		{400_000, 200}, // over-budget is allowed and meaningful
	}

	for _, tt := range tests {
		if got := BudgetPercent(tt.tokens); got != tt.want {
			t.Errorf("BudgetPercent(%d) = %f, want %f", tt.tokens, got, tt.want)
		}
	}
}

func TestBudgetPercentMonotonic(t *testing.T) {
	prev := BudgetPercent(0)
	for tokens := 1000; tokens <= 500_000; tokens += 1000 {
		cur := BudgetPercent(tokens)
		if cur < prev {
			t.Fatalf("BudgetPercent not monotonic: %f at %d tokens, previous %f", cur, tokens, prev)
		}
		prev = cur
	}
}
