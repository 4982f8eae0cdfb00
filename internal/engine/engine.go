// Package engine is the orchestration facade over the memory health and
// curation subsystems. It holds no cross-request document state: every
// operation re-reads what it needs and returns immutable snapshots, leaving
// re-render concerns to the caller. The one piece of session state is the
// latest document analysis, replaced wholesale after every curation edit.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lazypower/curator/internal/analysis"
	"github.com/lazypower/curator/internal/catalog"
	"github.com/lazypower/curator/internal/curate"
	"github.com/lazypower/curator/internal/docs"
	"github.com/lazypower/curator/internal/health"
	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/store"
	"github.com/lazypower/curator/internal/tokens"
)

// Engine wires the curation pipeline together.
type Engine struct {
	DB   *store.DB
	Docs *docs.Store
	LLM  llm.Client

	docAnalyzer  *analysis.DocumentAnalyzer
	applier      *curate.Applier
	sessionCache *analysis.Cache

	mu           sync.Mutex
	lastAnalysis *analysis.DocAnalysis
}

// New creates an Engine. The LLM client may be nil, in which case the
// analysis-backed operations fail with llm.ErrUnavailable while the local
// ones (catalog, health, learnings, curation without re-analysis) keep
// working.
func New(db *store.DB, client llm.Client, cooldown time.Duration) *Engine {
	docStore := docs.NewStore()
	docAnalyzer := analysis.NewDocumentAnalyzer(client, docStore)

	e := &Engine{
		DB:           db,
		Docs:         docStore,
		LLM:          client,
		docAnalyzer:  docAnalyzer,
		sessionCache: analysis.NewCache(analysis.NewSessionAnalyzer(client), cooldown),
	}
	if client != nil {
		e.applier = curate.NewApplier(docStore, docAnalyzer)
	} else {
		e.applier = curate.NewApplier(docStore, nil)
	}
	return e
}

// ScanCatalog re-reads and classifies the project's memory artifacts.
func (e *Engine) ScanCatalog(projectPath string) ([]catalog.Source, error) {
	return catalog.Scan(projectPath)
}

// LoadHealth aggregates the catalog, learning counts, and the primary-document
// quality score into a health snapshot. The score comes from the latest
// document analysis when one exists, otherwise from a size heuristic.
func (e *Engine) LoadHealth(projectPath string) (*health.Health, error) {
	sources, err := catalog.Scan(projectPath)
	if err != nil {
		return nil, err
	}

	score := 0
	if last := e.LastDocumentAnalysis(); last != nil {
		score = last.QualityScore
	} else {
		score = heuristicScore(sources)
	}

	h := health.Aggregate(sources, score)

	if e.DB != nil {
		total, active, err := e.DB.CountLearnings(projectPath)
		if err != nil {
			log.Printf("engine: count learnings: %v", err)
		} else {
			h.TotalLearnings = total
			h.ActiveLearnings = active
		}
	}

	return &h, nil
}

// heuristicScore estimates primary-document quality from size alone, used
// until a real analysis has run. A lean document scores high; past roughly
// 800 lines curation is overdue.
func heuristicScore(sources []catalog.Source) int {
	var primaryLines int
	for _, src := range sources {
		if src.Kind == catalog.KindPrimary {
			primaryLines = src.Lines
			break
		}
	}

	switch {
	case primaryLines == 0:
		return 0
	case primaryLines < 200:
		return 90
	case primaryLines < 400:
		return 75
	case primaryLines < 800:
		return 55
	default:
		return 30
	}
}

// LoadLearnings lists the project's learnings, newest first.
func (e *Engine) LoadLearnings(projectPath string) ([]store.Learning, error) {
	return e.DB.ListLearnings(projectPath)
}

// RunDocumentAnalysis analyzes the primary document and replaces the cached
// analysis snapshot.
func (e *Engine) RunDocumentAnalysis(ctx context.Context, projectPath string) (*analysis.DocAnalysis, error) {
	result, err := e.docAnalyzer.Analyze(ctx, projectPath)
	if err != nil {
		return nil, err
	}
	e.setLastAnalysis(result)
	return result, nil
}

// LastDocumentAnalysis returns the cached analysis snapshot, or nil. The
// snapshot's line addresses are only valid against the document state it was
// computed from.
func (e *Engine) LastDocumentAnalysis() *analysis.DocAnalysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAnalysis
}

func (e *Engine) setLastAnalysis(a *analysis.DocAnalysis) {
	e.mu.Lock()
	e.lastAnalysis = a
	e.mu.Unlock()
}

// ApplyRemoval removes the given lines from the primary document. The cached
// analysis is replaced with the post-edit one — or cleared if re-analysis
// failed, because the old line addresses no longer match the document.
func (e *Engine) ApplyRemoval(ctx context.Context, projectPath string, lineNumbers []int) (*curate.Result, error) {
	result, err := e.applier.ApplyRemoval(ctx, projectPath, lineNumbers)
	if err != nil {
		return nil, err
	}
	e.setLastAnalysis(result.Analysis)
	return result, nil
}

// ApplyMove relocates a line range into another artifact. Cached-analysis
// handling matches ApplyRemoval.
func (e *Engine) ApplyMove(ctx context.Context, projectPath string, startLine, endLine int, targetFile string) (*curate.Result, error) {
	result, err := e.applier.ApplyMove(ctx, projectPath, startLine, endLine, targetFile)
	if err != nil {
		return nil, err
	}
	e.setLastAnalysis(result.Analysis)
	return result, nil
}

// UpdateLearningStatus toggles a learning's lifecycle status.
func (e *Engine) UpdateLearningStatus(id, status string) (*store.Learning, error) {
	if status == store.StatusPromoted {
		return nil, fmt.Errorf("promotion must go through PromoteLearning")
	}
	return e.DB.SetLearningStatus(id, status)
}

// PromoteLearning folds a learning into a durable artifact: the content is
// appended to the target first, and only then is the learning marked
// promoted — the same no-data-loss ordering as ApplyMove.
func (e *Engine) PromoteLearning(projectPath, id, targetFile string) (*store.Learning, error) {
	l, err := e.DB.GetLearning(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("no learning found for %s", id)
	}
	if l.Status == store.StatusPromoted {
		return nil, fmt.Errorf("learning %s already promoted", id)
	}

	text := fmt.Sprintf("- %s\n", l.Content)
	if err := e.Docs.Append(projectPath, targetFile, text); err != nil {
		return nil, fmt.Errorf("append learning to %s: %w", targetFile, err)
	}

	if err := e.DB.MarkPromoted(id, targetFile); err != nil {
		// The content landed in the artifact; only the bookkeeping failed.
		// Report it rather than trying to undo the append.
		return nil, fmt.Errorf("learning appended to %s but not marked: %w", targetFile, err)
	}

	return e.DB.GetLearning(id)
}

// GetSessionAnalysis returns the cooldown-gated session retrospective. Fresh
// results are persisted to the history table; persistence failures are soft.
func (e *Engine) GetSessionAnalysis(ctx context.Context, req analysis.SessionRequest) (*analysis.SessionAnalysis, bool, error) {
	result, fromCache, err := e.sessionCache.GetOrAnalyze(ctx, req)
	if err != nil {
		return nil, false, err
	}

	if !fromCache && e.DB != nil {
		recs, err := json.Marshal(result.Recommendations)
		if err != nil {
			recs = []byte("[]")
		}
		if _, err := e.DB.SaveSessionAnalysis(req.ProjectPath, req.ProjectName, result.Summary, string(recs)); err != nil {
			log.Printf("engine: persist session analysis: %v", err)
		}
	}

	return result, fromCache, nil
}

// CanRunSessionAnalysis reports whether a fresh session analysis would run
// right now, so callers can disable their retry control.
func (e *Engine) CanRunSessionAnalysis() bool {
	return e.sessionCache.CanAnalyze()
}

// TokenBudget reports the estimated token usage and context-window share of
// the primary document as it exists on disk.
func (e *Engine) TokenBudget(projectPath string) (estimated int, percent float64, err error) {
	doc, err := e.Docs.ReadPrimary(projectPath)
	if err != nil {
		return 0, 0, err
	}
	if !doc.Exists {
		return 0, 0, nil
	}
	return doc.TokenEstimate, tokens.BudgetPercent(doc.TokenEstimate), nil
}
