// Package health aggregates catalog metadata and the primary-document quality
// score into a single memory health snapshot.
package health

import (
	"github.com/lazypower/curator/internal/catalog"
	"github.com/lazypower/curator/internal/tokens"
)

// Rating is the discrete health scale.
type Rating string

const (
	RatingExcellent      Rating = "excellent"
	RatingGood           Rating = "good"
	RatingNeedsAttention Rating = "needs-attention"
	RatingPoor           Rating = "poor"
)

// Health is an aggregate snapshot over all memory sources. The Rating field
// is always derived from PrimaryDocScore — never set independently — so the
// numbers and the label cannot disagree.
type Health struct {
	SourceCount     int     `json:"source_count"`
	TotalLines      int     `json:"total_lines"`
	TotalSizeBytes  int64   `json:"total_size_bytes"`
	TotalLearnings  int     `json:"total_learnings"`
	ActiveLearnings int     `json:"active_learnings"`
	PrimaryDocLines int     `json:"primary_doc_lines"`
	PrimaryDocScore int     `json:"primary_doc_score"`
	RuleFileCount   int     `json:"rule_file_count"`
	SkillCount      int     `json:"skill_count"`
	EstimatedTokens int     `json:"estimated_tokens"`
	BudgetPercent   float64 `json:"budget_percent"`
	Rating          Rating  `json:"rating"`
}

// RatingForScore maps a 0-100 quality score onto the rating bands.
func RatingForScore(score int) Rating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingNeedsAttention
	default:
		return RatingPoor
	}
}

// Aggregate combines already-fetched source metadata with the primary-document
// quality score. Pure — no I/O, no failure modes beyond a nonsensical input
// being the caller's bug.
func Aggregate(sources []catalog.Source, primaryDocScore int) Health {
	h := Health{
		SourceCount:     len(sources),
		PrimaryDocScore: primaryDocScore,
		Rating:          RatingForScore(primaryDocScore),
	}

	var totalSize int64
	for _, src := range sources {
		h.TotalLines += src.Lines
		totalSize += src.SizeBytes

		switch src.Kind {
		case catalog.KindPrimary:
			h.PrimaryDocLines = src.Lines
		case catalog.KindRule:
			h.RuleFileCount++
		case catalog.KindSkill:
			h.SkillCount++
		}
	}

	h.TotalSizeBytes = totalSize
	h.EstimatedTokens = int((totalSize + tokens.CharsPerToken - 1) / tokens.CharsPerToken)
	h.BudgetPercent = tokens.BudgetPercent(h.EstimatedTokens)

	return h
}
