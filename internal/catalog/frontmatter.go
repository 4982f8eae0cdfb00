package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// skillMeta holds parsed metadata from a SKILL.md frontmatter block.
type skillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// parseFrontmatter extracts the YAML frontmatter delimited by --- markers.
func parseFrontmatter(data []byte) (skillMeta, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "---") {
		return skillMeta{}, fmt.Errorf("no frontmatter found")
	}

	rest := trimmed[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return skillMeta{}, fmt.Errorf("no closing frontmatter delimiter")
	}

	var meta skillMeta
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return skillMeta{}, fmt.Errorf("parse yaml: %w", err)
	}

	// yaml folded scalars can leave trailing whitespace
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Description = strings.TrimSpace(meta.Description)

	return meta, nil
}
