package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 37878 {
		t.Errorf("port = %d, want 37878", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "claude-cli" {
		t.Errorf("provider = %q, want claude-cli", cfg.LLM.Provider)
	}
	if cfg.SessionCooldown() != 5*time.Minute {
		t.Errorf("cooldown = %v, want 5m", cfg.SessionCooldown())
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != Default().Server.Port {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 40000

[llm]
provider = "ollama"
ollama_model = "llama3.2"

[analysis]
session_cooldown_minutes = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 40000 {
		t.Errorf("port = %d, want 40000", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want default kept", cfg.Server.Bind)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.LLM.Provider)
	}
	if cfg.SessionCooldown() != 10*time.Minute {
		t.Errorf("cooldown = %v, want 10m", cfg.SessionCooldown())
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
