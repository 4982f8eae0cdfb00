// Package curate applies line-addressed remediations to the primary document
// as atomic read-modify-write transformations, then refreshes the analysis.
package curate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"

	"github.com/lazypower/curator/internal/analysis"
	"github.com/lazypower/curator/internal/docs"
	"github.com/lazypower/curator/internal/textedit"
)

var (
	// ErrBusy is returned when a curation operation is already in flight.
	// Line numbers computed against an in-flight document state are
	// meaningless once a second mutation interleaves, so concurrent calls
	// are rejected rather than queued.
	ErrBusy = errors.New("curation already in flight")

	// ErrPartialWrite means a move's append to the target file succeeded but
	// the primary-document overwrite failed. The content now exists in both
	// places; the caller resolves it by retrying. Duplication is preferred
	// over the data loss that reordering the writes would risk.
	ErrPartialWrite = errors.New("moved content appended but primary document overwrite failed")
)

// State labels the applier's position in the curation pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateReading     State = "reading"
	StateEditing     State = "editing"
	StateWriting     State = "writing"
	StateReanalyzing State = "reanalyzing"
	StateFailed      State = "failed"
)

// DocStore is the document I/O the applier drives.
type DocStore interface {
	ReadPrimary(projectPath string) (*docs.Document, error)
	WritePrimary(projectPath, content string) error
	Append(projectPath, relativeTarget, text string) error
}

// Analyzer re-runs the document critique after a successful write.
type Analyzer interface {
	Analyze(ctx context.Context, projectPath string) (*analysis.DocAnalysis, error)
}

// Result reports what a curation operation did.
type Result struct {
	LinesRemoved int                   `json:"lines_removed"`
	LinesMoved   int                   `json:"lines_moved"`
	TargetFile   string                `json:"target_file,omitempty"`
	Analysis     *analysis.DocAnalysis `json:"analysis,omitempty"`
	Warning      string                `json:"warning,omitempty"`
}

// Applier is the curation state machine. Single-flight: one operation per
// applier at a time, rejected with ErrBusy otherwise.
type Applier struct {
	docs     DocStore
	analyzer Analyzer

	flight sync.Mutex // TryLock guards single-flight

	mu    sync.Mutex
	state State
}

// NewApplier creates a curation applier.
func NewApplier(docs DocStore, analyzer Analyzer) *Applier {
	return &Applier{docs: docs, analyzer: analyzer, state: StateIdle}
}

// State returns the applier's current pipeline state.
func (a *Applier) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Applier) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// ApplyRemoval drops the given 1-based lines from the primary document and
// re-analyzes. The write is the durable commit point: a re-analysis failure
// afterwards is soft (stale suggestions, not data loss) and surfaces as a
// warning on the result, never as an error.
func (a *Applier) ApplyRemoval(ctx context.Context, projectPath string, lineNumbers []int) (*Result, error) {
	if !a.flight.TryLock() {
		return nil, ErrBusy
	}
	defer a.flight.Unlock()

	a.setState(StateReading)
	doc, err := a.docs.ReadPrimary(projectPath)
	if err != nil {
		a.setState(StateFailed)
		return nil, fmt.Errorf("read primary document: %w", err)
	}
	if !doc.Exists {
		a.setState(StateFailed)
		return nil, fmt.Errorf("primary document %s: %w", doc.Path, fs.ErrNotExist)
	}

	a.setState(StateEditing)
	before := textedit.LineCount(doc.Content)
	remainder := textedit.RemoveLines(doc.Content, lineNumbers)
	removed := before - textedit.LineCount(remainder)
	if remainder == "" && before > 0 {
		removed = before
	}

	a.setState(StateWriting)
	if err := a.docs.WritePrimary(projectPath, remainder); err != nil {
		a.setState(StateFailed)
		return nil, fmt.Errorf("write primary document: %w", err)
	}

	result := &Result{LinesRemoved: removed}
	a.reanalyze(ctx, projectPath, result)
	a.setState(StateIdle)
	return result, nil
}

// ApplyMove extracts the inclusive line range from the primary document,
// appends it to targetFile, then overwrites the primary with the remainder —
// in that fixed order, so the extracted content always exists somewhere.
func (a *Applier) ApplyMove(ctx context.Context, projectPath string, startLine, endLine int, targetFile string) (*Result, error) {
	if !a.flight.TryLock() {
		return nil, ErrBusy
	}
	defer a.flight.Unlock()

	a.setState(StateReading)
	doc, err := a.docs.ReadPrimary(projectPath)
	if err != nil {
		a.setState(StateFailed)
		return nil, fmt.Errorf("read primary document: %w", err)
	}
	if !doc.Exists {
		a.setState(StateFailed)
		return nil, fmt.Errorf("primary document %s: %w", doc.Path, fs.ErrNotExist)
	}

	a.setState(StateEditing)
	// Bounds re-validated against the document as it exists now, not as the
	// analysis saw it.
	remainder, extracted, err := textedit.ExtractRange(doc.Content, startLine, endLine)
	if err != nil {
		a.setState(StateFailed)
		return nil, err
	}

	a.setState(StateWriting)
	if err := a.docs.Append(projectPath, targetFile, extracted); err != nil {
		// Step (1) failed: the source document is untouched and remains the
		// single source of truth.
		a.setState(StateFailed)
		return nil, fmt.Errorf("append to %s: %w", targetFile, err)
	}
	if err := a.docs.WritePrimary(projectPath, remainder); err != nil {
		a.setState(StateFailed)
		return nil, fmt.Errorf("%w: %v", ErrPartialWrite, err)
	}

	result := &Result{
		LinesMoved: endLine - startLine + 1,
		TargetFile: targetFile,
	}
	a.reanalyze(ctx, projectPath, result)
	a.setState(StateIdle)
	return result, nil
}

// reanalyze refreshes the document analysis after a committed write. On
// failure the result carries no analysis — callers must treat any previously
// cached analysis as stale, since its line numbers no longer match the
// document.
func (a *Applier) reanalyze(ctx context.Context, projectPath string, result *Result) {
	if a.analyzer == nil {
		return
	}

	a.setState(StateReanalyzing)
	fresh, err := a.analyzer.Analyze(ctx, projectPath)
	if err != nil {
		log.Printf("curate: re-analysis after edit failed: %v", err)
		result.Warning = fmt.Sprintf("document updated but re-analysis failed: %v", err)
		return
	}
	result.Analysis = fresh
}
