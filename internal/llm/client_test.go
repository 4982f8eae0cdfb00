package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/lazypower/curator/internal/config"
)

func TestNewClientProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{"claude-cli", config.LLMConfig{Provider: "claude-cli"}, false},
		{"ollama", config.LLMConfig{Provider: "ollama"}, false},
		{"anthropic with key", config.LLMConfig{Provider: "anthropic", AnthropicKey: "sk-test"}, false},
		{"anthropic without key", config.LLMConfig{Provider: "anthropic"}, true},
		{"empty provider", config.LLMConfig{}, true},
		{"unknown provider", config.LLMConfig{Provider: "gpt9"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Errorf("error = %v, want ErrUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMockClientQueue(t *testing.T) {
	m := &MockClient{
		Responses: []*Response{
			{Content: "first"},
			{Content: "second"},
		},
		Response: &Response{Content: "fallback"},
	}

	ctx := context.Background()
	for _, want := range []string{"first", "second", "fallback"} {
		resp, err := m.Complete(ctx, "prompt")
		if err != nil {
			t.Fatal(err)
		}
		if resp.Content != want {
			t.Errorf("Content = %q, want %q", resp.Content, want)
		}
	}

	if len(m.Calls) != 3 {
		t.Errorf("Calls = %d, want 3", len(m.Calls))
	}
}
