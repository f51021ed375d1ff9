// Package transcript reads agent conversation files (Claude Code JSONL) into
// the message shape stored in prompt records. Tool responses never survive
// the conversion; only user, assistant, and tool_use entries do.
package transcript

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/satyamtg/git-ai/internal/authorship"
)

type transcriptEntry struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Role    string            `json:"role"`
		Content []json.RawMessage `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
}

// Read parses a JSONL transcript into prompt-record messages. Unreadable
// files yield nil; attribution never depends on transcript availability.
func Read(path string) []authorship.Message {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var messages []authorship.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry transcriptEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}
		for _, raw := range entry.Message.Content {
			var block contentBlock
			if json.Unmarshal(raw, &block) != nil {
				continue
			}
			switch block.Type {
			case "text":
				msgType := "assistant"
				if entry.Message.Role == "user" {
					msgType = "user"
				}
				if block.Text != "" {
					messages = append(messages, authorship.Message{
						Type:      msgType,
						Text:      block.Text,
						Timestamp: entry.Timestamp,
					})
				}
			case "tool_use":
				messages = append(messages, authorship.Message{
					Type:      "tool_use",
					Name:      block.Name,
					Input:     block.Input,
					Timestamp: entry.Timestamp,
				})
			}
			// tool_result and thinking blocks are dropped on the floor.
		}
	}
	return messages
}

// FromPlainPrompt wraps a bare prompt string as a one-message transcript,
// used when no transcript file is available.
func FromPlainPrompt(prompt, timestamp string) []authorship.Message {
	if prompt == "" {
		return nil
	}
	return []authorship.Message{{Type: "user", Text: prompt, Timestamp: timestamp}}
}
