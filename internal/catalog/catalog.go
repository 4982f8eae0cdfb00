// Package catalog enumerates and classifies the memory artifacts of a project:
// the primary CLAUDE.md document, rule files, and skill files.
package catalog

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind classifies a memory artifact.
type Kind string

const (
	KindPrimary Kind = "primary-document"
	KindRule    Kind = "rule-file"
	KindSkill   Kind = "skill-file"
)

// Well-known locations inside a project.
const (
	PrimaryFileName = "CLAUDE.md"
	rulesDir        = ".claude/rules"
	skillsDir       = ".claude/skills"
	skillFileName   = "SKILL.md"
)

// Source is an immutable snapshot of one memory artifact. Snapshots are
// discarded and replaced wholesale on each scan, never patched.
type Source struct {
	Path        string    `json:"path"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Lines       int       `json:"lines"`
	SizeBytes   int64     `json:"size_bytes"`
	ModTime     time.Time `json:"mod_time"`
	Description string    `json:"description"`
}

// Scan re-reads every memory-bearing location of a project and returns the
// classified sources in a fixed order: primary document, rules, skills.
// A project with no artifacts yields an empty list. A project path that does
// not exist is an error; a single unreadable artifact is skipped with a
// warning — partial results beat none.
func Scan(projectPath string) ([]Source, error) {
	info, err := os.Stat(projectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project path %s: %w", projectPath, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", projectPath)
	}

	sources := []Source{}

	primaryPath := filepath.Join(projectPath, PrimaryFileName)
	if src, ok := readSource(primaryPath, KindPrimary, PrimaryFileName, "Primary memory document"); ok {
		sources = append(sources, src)
	}

	sources = append(sources, scanRules(projectPath)...)
	sources = append(sources, scanSkills(projectPath)...)

	return sources, nil
}

// scanRules collects .claude/rules/*.md files, sorted by name.
func scanRules(projectPath string) []Source {
	dir := filepath.Join(projectPath, filepath.FromSlash(rulesDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("catalog: read rules dir %s: %v", dir, err)
		}
		return nil
	}

	var sources []Source
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := strings.TrimSuffix(entry.Name(), ".md")
		if src, ok := readSource(path, KindRule, name, "Rule file"); ok {
			sources = append(sources, src)
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}

// scanSkills collects .claude/skills/*/SKILL.md files. Name and description
// come from YAML frontmatter when present; the directory name is the fallback.
func scanSkills(projectPath string) []Source {
	dir := filepath.Join(projectPath, filepath.FromSlash(skillsDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("catalog: read skills dir %s: %v", dir, err)
		}
		return nil
	}

	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), skillFileName)
		data, err := os.ReadFile(path)
		if err != nil {
			// No SKILL.md in this subdirectory, skip
			continue
		}

		name := entry.Name()
		description := "Skill file"
		if meta, err := parseFrontmatter(data); err == nil {
			if meta.Name != "" {
				name = meta.Name
			}
			if meta.Description != "" {
				description = meta.Description
			}
		}

		if src, ok := readSource(path, KindSkill, name, description); ok {
			sources = append(sources, src)
		}
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}

// readSource builds a Source snapshot for one artifact. Returns false when the
// artifact does not exist or cannot be read.
func readSource(path string, kind Kind, name, description string) (Source, bool) {
	st, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("catalog: stat %s: %v", path, err)
		}
		return Source{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("catalog: skipping unreadable %s: %v", path, err)
		return Source{}, false
	}

	return Source{
		Path:        path,
		Kind:        kind,
		Name:        name,
		Lines:       countLines(data),
		SizeBytes:   st.Size(),
		ModTime:     st.ModTime(),
		Description: description,
	}, true
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
