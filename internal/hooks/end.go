package hooks

import (
	"encoding/json"
	"path/filepath"
)

// handleEnd asks the server for a session retrospective. The server enforces
// the analysis cooldown; a throttled or failed request is silently dropped.
func handleEnd(client *Client, input *HookInput) {
	if input.TranscriptPath == "" {
		return
	}

	body, err := json.Marshal(map[string]string{
		"path":            input.CWD,
		"transcript_path": input.TranscriptPath,
		"project_name":    filepath.Base(input.CWD),
	})
	if err != nil {
		return
	}

	if _, err := client.Post("/api/analysis/session", body); err != nil {
		ExitError(err)
		return
	}
}
