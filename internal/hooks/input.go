package hooks

// HookInput represents the JSON that Claude Code sends on stdin to hook handlers.
// All fields are optional — different events populate different subsets.
type HookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`

	// SessionStart
	Source string `json:"source,omitempty"`
	Model  string `json:"model,omitempty"`

	// SessionEnd
	Reason string `json:"reason,omitempty"`
}
