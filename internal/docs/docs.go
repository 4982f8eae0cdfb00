// Package docs owns the primary-document file operations: read, overwrite,
// and append-to-sibling-artifact. It is the durable commit layer under the
// curation applier — no partial writes, no retries.
package docs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lazypower/curator/internal/catalog"
	"github.com/lazypower/curator/internal/tokens"
)

// Document is a value snapshot of the primary document at read time. There is
// no aliasing between this snapshot and the file on disk beyond a single
// operation's lifetime.
type Document struct {
	Exists        bool   `json:"exists"`
	Path          string `json:"path"`
	Content       string `json:"content"`
	TokenEstimate int    `json:"token_estimate"`
}

// Store performs document I/O relative to a project root. Stateless.
type Store struct{}

// NewStore returns a document store.
func NewStore() *Store {
	return &Store{}
}

// ReadPrimary reads the project's CLAUDE.md. A missing document is not an
// error — the returned snapshot has Exists=false. A missing project path is.
func (s *Store) ReadPrimary(projectPath string) (*Document, error) {
	if _, err := os.Stat(projectPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project path %s: %w", projectPath, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat project path: %w", err)
	}

	path := filepath.Join(projectPath, catalog.PrimaryFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Exists: false, Path: path}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	return &Document{
		Exists:        true,
		Path:          path,
		Content:       content,
		TokenEstimate: tokens.Estimate(content),
	}, nil
}

// WritePrimary overwrites the project's CLAUDE.md with content.
func (s *Store) WritePrimary(projectPath, content string) error {
	path := filepath.Join(projectPath, catalog.PrimaryFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Append appends text to an artifact addressed relative to the project root,
// creating the file and any parent directories if absent. The target must
// stay inside the project.
func (s *Store) Append(projectPath, relativeTarget, text string) error {
	target, err := resolveTarget(projectPath, relativeTarget)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("append to %s: %w", target, err)
	}
	return nil
}

// resolveTarget joins and validates a relative artifact path. Absolute paths
// and paths escaping the project root are rejected.
func resolveTarget(projectPath, relativeTarget string) (string, error) {
	if relativeTarget == "" {
		return "", fmt.Errorf("empty target path")
	}
	if filepath.IsAbs(relativeTarget) {
		return "", fmt.Errorf("target %s must be relative to the project", relativeTarget)
	}

	target := filepath.Join(projectPath, filepath.FromSlash(relativeTarget))

	rel, err := filepath.Rel(projectPath, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %s escapes the project root", relativeTarget)
	}
	return target, nil
}
