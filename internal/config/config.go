// Package config holds curator configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all curator configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	Analysis AnalysisConfig `toml:"analysis"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider     string `toml:"provider"` // "claude-cli", "anthropic", "ollama"
	Model        string `toml:"model"`    // e.g. "haiku", "sonnet"
	OllamaURL    string `toml:"ollama_url"`
	OllamaModel  string `toml:"ollama_model"` // e.g. "llama3.2"
	AnthropicKey string `toml:"anthropic_key"`
}

type AnalysisConfig struct {
	// SessionCooldownMinutes gates how often a session transcript analysis
	// may be re-run. Failed runs never consume the cooldown.
	SessionCooldownMinutes int `toml:"session_cooldown_minutes"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37878,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "claude-cli",
			Model:    "haiku",
		},
		Analysis: AnalysisConfig{
			SessionCooldownMinutes: 5,
		},
	}
}

// DefaultPath returns the default config file location: ~/.curator/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".curator", "config.toml"), nil
}

// Load reads a TOML config file over the defaults. A missing file is not an
// error — defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// SessionCooldown returns the session analysis cooldown as a duration.
func (c *Config) SessionCooldown() time.Duration {
	minutes := c.Analysis.SessionCooldownMinutes
	if minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}
