package hook

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/checkpoint"
	"github.com/satyamtg/git-ai/internal/project"
	"github.com/satyamtg/git-ai/internal/transcript"
)

// HandlePreToolUse snapshots the worktree content of the files a tool is
// about to edit, so the post-hook can pair pre and post images even when
// the tool rewrites the file wholesale.
func HandlePreToolUse(c *Context, r io.Reader) error {
	if c == nil {
		return nil
	}
	data, ok := readPayload(c, r)
	if !ok {
		return nil
	}
	for _, path := range editedPaths(data) {
		rel := project.RelPath(path, c.Paths.Root)
		content, err := os.ReadFile(filepath.Join(c.Paths.Root, rel))
		if err != nil && !os.IsNotExist(err) {
			c.Log.Errorf("pre-tool-use: read %s: %v", rel, err)
			continue
		}
		if err := writePreImage(c, rel, string(content)); err != nil {
			c.Log.Errorf("pre-tool-use: stash pre-image for %s: %v", rel, err)
		}
	}
	return nil
}

// HandlePostToolUse records an AI checkpoint for every file the tool edited.
// Human edits made between tool calls surface as a synthesized human
// checkpoint bridging the last recorded post-image to the observed pre-image.
func HandlePostToolUse(c *Context, r io.Reader) error {
	if c == nil {
		return nil
	}
	data, ok := readPayload(c, r)
	if !ok {
		return nil
	}

	ps := c.loadPromptState()
	sessionID, _ := data["session_id"].(string)
	if sessionID == "" {
		sessionID = ps.SessionID
	}
	transcriptPath, _ := data["transcript_path"].(string)
	if transcriptPath == "" {
		transcriptPath = ps.TranscriptPath
	}
	if sessionID == "" {
		c.Log.Warnf("post-tool-use: no session id, dropping edit")
		return nil
	}

	agent := &authorship.AgentID{Tool: "claude-code", ID: sessionID, Model: ps.Model}
	msgs := transcript.Read(transcriptPath)
	if msgs == nil {
		msgs = transcript.FromPlainPrompt(ps.Prompt, ps.Timestamp)
	}

	for _, path := range editedPaths(data) {
		rel := project.RelPath(path, c.Paths.Root)

		post, err := os.ReadFile(filepath.Join(c.Paths.Root, rel))
		if err != nil && !os.IsNotExist(err) {
			c.Log.Errorf("post-tool-use: read %s: %v", rel, err)
			continue
		}
		pre, havePre := takePreImage(c, rel)
		if !havePre {
			// No pre-hook snapshot; fall back to the last recorded state.
			pre = lastKnownContent(c, rel)
		}
		if pre == string(post) {
			continue
		}

		// An unrecorded gap between the last checkpoint and this edit's
		// pre-image is human work; record it so folding subtracts it.
		last := lastKnownContent(c, rel)
		if last != pre {
			if _, err := c.Store.Append(checkpoint.KindHuman, nil, ps.Author, rel, last, pre, nil); err != nil {
				c.Log.Errorf("post-tool-use: human bridge checkpoint for %s: %v", rel, err)
				continue
			}
		}

		seq, err := c.Store.Append(checkpoint.KindAI, agent, ps.Author, rel, pre, string(post), msgs)
		if err != nil {
			c.Log.Errorf("post-tool-use: checkpoint for %s: %v", rel, err)
			continue
		}
		c.Log.Debugf("post-tool-use: checkpoint %d for %s (session %s)", seq, rel, sessionID)
	}
	return nil
}

func readPayload(c *Context, r io.Reader) (map[string]any, bool) {
	raw, err := io.ReadAll(r)
	if err != nil {
		c.Log.Errorf("hook payload: read stdin: %v", err)
		return nil, false
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		c.Log.Errorf("hook payload: parse: %v", err)
		return nil, false
	}
	return data, true
}

// editedPaths extracts the files a tool call touched from its payload.
func editedPaths(data map[string]any) []string {
	toolName, _ := data["tool_name"].(string)
	input, _ := data["tool_input"].(map[string]any)
	if input == nil {
		return nil
	}
	switch toolName {
	case "Edit", "Write", "MultiEdit", "NotebookEdit":
		if p, _ := input["file_path"].(string); p != "" {
			return []string{p}
		}
	}
	return nil
}

// LastRecordedContent returns the most recent recorded state of a path: the
// last checkpoint's post-image, else the HEAD blob.
func LastRecordedContent(c *Context, rel string) string {
	return lastKnownContent(c, rel)
}

func lastKnownContent(c *Context, rel string) string {
	cps, err := c.Store.Range([]string{rel}, 0)
	if err == nil && len(cps) > 0 {
		if post, err := c.Store.PostImage(cps[len(cps)-1]); err == nil {
			return post
		}
	}
	head, _ := c.Repo.ShowFile("HEAD", rel)
	return head
}

func preImagePath(c *Context, rel string) string {
	return filepath.Join(c.Paths.StateDir, "pre", checkpoint.HashBlob(rel))
}

func writePreImage(c *Context, rel, content string) error {
	path := preImagePath(c, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func takePreImage(c *Context, rel string) (string, bool) {
	path := preImagePath(c, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	_ = os.Remove(path)
	return string(data), true
}
