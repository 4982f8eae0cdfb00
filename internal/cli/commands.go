package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/curator/internal/engine"
	"github.com/lazypower/curator/internal/llm"
	"github.com/lazypower/curator/internal/store"
)

// resolvePath returns the project path from args, defaulting to the current
// directory.
func resolvePath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return os.Getwd()
}

// buildEngine assembles a local engine for one-shot CLI commands. The LLM
// client is optional — commands that need it fail with a clear error.
func buildEngine() (*engine.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.Provider = "anthropic"
		cfg.LLM.AnthropicKey = key
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		llmClient = nil
	}

	return engine.New(db, llmClient, cfg.SessionCooldown()), func() { db.Close() }, nil
}

// --- scan command ---

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List the project's memory artifacts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	sources, err := eng.ScanCatalog(path)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No memory artifacts found. Create a CLAUDE.md to get started.")
		return nil
	}

	fmt.Printf("## Memory artifacts in %s\n\n", path)
	for _, src := range sources {
		fmt.Printf("  %-16s %-40s %5d lines  %6d bytes\n", src.Kind, src.Name, src.Lines, src.SizeBytes)
	}
	return nil
}

// --- health command ---

var healthCmd = &cobra.Command{
	Use:   "health [path]",
	Short: "Show memory health for a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	h, err := eng.LoadHealth(path)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	fmt.Printf("## Memory Health — %s\n\n", path)
	fmt.Printf("  Rating:    %s (%d/100)\n", h.Rating, h.PrimaryDocScore)
	fmt.Printf("  Sources:   %d (%d rules, %d skills)\n", h.SourceCount, h.RuleFileCount, h.SkillCount)
	fmt.Printf("  CLAUDE.md: %d lines\n", h.PrimaryDocLines)
	fmt.Printf("  Tokens:    ~%d (%.2f%% of context window)\n", h.EstimatedTokens, h.BudgetPercent)
	if h.TotalLearnings > 0 {
		fmt.Printf("  Learnings: %d active of %d\n", h.ActiveLearnings, h.TotalLearnings)
	}
	return nil
}

// --- analyze command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run an AI critique of the project's CLAUDE.md",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := eng.RunDocumentAnalysis(ctx, path)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	fmt.Printf("## CLAUDE.md Analysis — %s\n\n", path)
	fmt.Printf("  Quality: %d/100\n", result.QualityScore)
	fmt.Printf("  Size:    %d lines, ~%d tokens\n", result.TotalLines, result.EstimatedTokens)

	if len(result.Sections) > 0 {
		fmt.Printf("  Sections: %s\n", strings.Join(result.Sections, ", "))
	}
	if len(result.Suggestions) > 0 {
		fmt.Println("\n### Suggestions")
		for _, s := range result.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(result.LinesToRemove) > 0 {
		fmt.Printf("\n### Lines to remove: %s\n", joinInts(result.LinesToRemove))
		fmt.Printf("  Apply with: curator curate remove --lines %s\n", joinInts(result.LinesToRemove))
	}
	if len(result.LinesToMove) > 0 {
		fmt.Println("\n### Lines to move")
		for _, m := range result.LinesToMove {
			fmt.Printf("  %d-%d → %s\n", m.StartLine, m.EndLine, m.TargetFile)
		}
	}
	return nil
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// --- curate command ---

var (
	curateLines  string
	curateStart  int
	curateEnd    int
	curateTarget string
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Apply curation edits to CLAUDE.md",
}

var curateRemoveCmd = &cobra.Command{
	Use:   "remove [path]",
	Short: "Remove lines from CLAUDE.md",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCurateRemove,
}

func runCurateRemove(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}
	lines, err := parseLineList(curateLines)
	if err != nil {
		return err
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := eng.ApplyRemoval(ctx, path, lines)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	fmt.Printf("Removed %d line(s) from CLAUDE.md\n", result.LinesRemoved)
	printCurationFollowup(result.Warning, result.Analysis != nil)
	return nil
}

var curateMoveCmd = &cobra.Command{
	Use:   "move [path]",
	Short: "Move a line range from CLAUDE.md into another artifact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCurateMove,
}

func runCurateMove(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}
	if curateTarget == "" {
		return fmt.Errorf("--target is required")
	}
	if curateStart < 1 || curateEnd < curateStart {
		return fmt.Errorf("invalid range %d-%d", curateStart, curateEnd)
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := eng.ApplyMove(ctx, path, curateStart, curateEnd, curateTarget)
	if err != nil {
		return fmt.Errorf("move: %w", err)
	}

	fmt.Printf("Moved %d line(s) to %s\n", result.LinesMoved, result.TargetFile)
	printCurationFollowup(result.Warning, result.Analysis != nil)
	return nil
}

func printCurationFollowup(warning string, reanalyzed bool) {
	if warning != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		return
	}
	if reanalyzed {
		fmt.Println("Document re-analyzed — run `curator analyze` to see fresh suggestions.")
	}
}

// parseLineList parses "2,4,7" into sorted-enough ints. Validation against
// the document happens downstream.
func parseLineList(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("--lines is required (e.g. --lines 2,4,7)")
	}
	var lines []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid line number %q", part)
		}
		lines = append(lines, n)
	}
	return lines, nil
}

// --- learnings command ---

var (
	learningsPath string
	promoteTarget string
)

var learningsCmd = &cobra.Command{
	Use:   "learnings",
	Short: "Manage extracted learnings",
}

var learningsListCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List learnings for a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLearningsList,
}

func runLearningsList(cmd *cobra.Command, args []string) error {
	path, err := resolvePath(args)
	if err != nil {
		return err
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	learnings, err := eng.LoadLearnings(path)
	if err != nil {
		return fmt.Errorf("list learnings: %w", err)
	}

	if len(learnings) == 0 {
		fmt.Println("No learnings recorded for this project.")
		return nil
	}

	fmt.Printf("## Learnings — %s\n\n", path)
	for _, l := range learnings {
		marker := " "
		switch l.Status {
		case store.StatusVerified:
			marker = "✓"
		case store.StatusRejected:
			marker = "✗"
		case store.StatusPromoted:
			marker = "↑"
		}
		fmt.Printf("  %s [%s] %s\n      id: %s  status: %s\n", marker, l.Category, l.Content, l.ID, l.Status)
		if l.PromotedTo != nil {
			fmt.Printf("      promoted to: %s\n", *l.PromotedTo)
		}
	}
	return nil
}

func statusCommand(use, short, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, closeDB, err := buildEngine()
			if err != nil {
				return err
			}
			defer closeDB()

			l, err := eng.UpdateLearningStatus(args[0], status)
			if err != nil {
				return err
			}
			fmt.Printf("Learning %s marked %s\n", l.ID, l.Status)
			return nil
		},
	}
}

var learningsPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Append a learning to a memory artifact and mark it promoted",
	Args:  cobra.ExactArgs(1),
	RunE:  runLearningsPromote,
}

func runLearningsPromote(cmd *cobra.Command, args []string) error {
	if promoteTarget == "" {
		return fmt.Errorf("--target is required (e.g. --target .claude/rules/patterns.md)")
	}
	path := learningsPath
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	eng, closeDB, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeDB()

	l, err := eng.PromoteLearning(path, args[0], promoteTarget)
	if err != nil {
		return fmt.Errorf("promote: %w", err)
	}

	fmt.Printf("Learning %s promoted to %s\n", l.ID, *l.PromotedTo)
	return nil
}

func init() {
	curateRemoveCmd.Flags().StringVar(&curateLines, "lines", "", "Comma-separated 1-based line numbers to remove")
	curateMoveCmd.Flags().IntVar(&curateStart, "start", 0, "First line of the range (1-based, inclusive)")
	curateMoveCmd.Flags().IntVar(&curateEnd, "end", 0, "Last line of the range (inclusive)")
	curateMoveCmd.Flags().StringVar(&curateTarget, "target", "", "Target file relative to the project root")
	curateCmd.AddCommand(curateRemoveCmd)
	curateCmd.AddCommand(curateMoveCmd)

	learningsPromoteCmd.Flags().StringVar(&promoteTarget, "target", "", "Target file relative to the project root")
	learningsPromoteCmd.Flags().StringVar(&learningsPath, "path", "", "Project path (defaults to the current directory)")
	learningsCmd.AddCommand(learningsListCmd)
	learningsCmd.AddCommand(statusCommand("verify", "Mark a learning verified", store.StatusVerified))
	learningsCmd.AddCommand(statusCommand("reject", "Mark a learning rejected", store.StatusRejected))
	learningsCmd.AddCommand(learningsPromoteCmd)
}
