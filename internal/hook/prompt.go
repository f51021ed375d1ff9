package hook

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/satyamtg/git-ai/internal/git"
)

var ideTagRe = regexp.MustCompile(`(?s)<ide_\w+>.*?</ide_\w+>\s*`)

// cleanPrompt strips IDE metadata tags from the prompt.
func cleanPrompt(raw string) string {
	return strings.TrimSpace(ideTagRe.ReplaceAllString(raw, ""))
}

// promptState is written to current_prompt.json for the tool-use hooks.
type promptState struct {
	Prompt         string `json:"prompt"`
	Timestamp      string `json:"timestamp"`
	Author         string `json:"author"`
	SessionID      string `json:"session_id"`
	Model          string `json:"model,omitempty"`
	TranscriptPath string `json:"transcript_path"`
}

func (c *Context) promptStateFile() string {
	return filepath.Join(c.Paths.StateDir, "current_prompt.json")
}

func (c *Context) loadPromptState() promptState {
	var ps promptState
	if b, err := os.ReadFile(c.promptStateFile()); err == nil {
		_ = json.Unmarshal(b, &ps)
	}
	return ps
}

// HandlePromptSubmit processes a UserPromptSubmit hook payload from stdin:
// it stashes the session identity so later tool-use hooks can attribute
// their edits.
func HandlePromptSubmit(c *Context, r io.Reader) error {
	if c == nil {
		return nil
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		c.Log.Errorf("prompt-submit: read stdin: %v", err)
		return nil
	}
	var data map[string]any
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			c.Log.Errorf("prompt-submit: parse payload: %v", err)
			return nil
		}
	}

	rawPrompt, _ := data["prompt"].(string)
	sessionID, _ := data["session_id"].(string)
	transcriptPath, _ := data["transcript_path"].(string)
	model, _ := data["model"].(string)

	state := promptState{
		Prompt:         cleanPrompt(rawPrompt),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Author:         git.Author(c.Paths.Root),
		SessionID:      sessionID,
		Model:          model,
		TranscriptPath: transcriptPath,
	}

	_ = os.MkdirAll(c.Paths.StateDir, 0o755)
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.promptStateFile(), b, 0o644); err != nil {
		c.Log.Errorf("prompt-submit: write state: %v", err)
		return nil
	}
	c.Log.Debugf("prompt-submit: session %s", sessionID)
	return nil
}
