package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTranscript(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeTranscript(t, `{"type":"user","timestamp":"t1","message":{"role":"user","content":[{"type":"text","text":"add a parser"}]}}
{"type":"assistant","timestamp":"t2","message":{"role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"on it"},{"type":"tool_use","name":"Edit","input":{"file_path":"a.go"}}]}}
{"type":"user","timestamp":"t3","message":{"role":"user","content":[{"type":"tool_result","text":"ok"}]}}
`)

	msgs := Read(path)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3: %+v", len(msgs), msgs)
	}
	if msgs[0].Type != "user" || msgs[0].Text != "add a parser" {
		t.Errorf("msg0 = %+v", msgs[0])
	}
	if msgs[1].Type != "assistant" || msgs[1].Text != "on it" {
		t.Errorf("msg1 = %+v", msgs[1])
	}
	if msgs[2].Type != "tool_use" || msgs[2].Name != "Edit" {
		t.Errorf("msg2 = %+v", msgs[2])
	}
}

func TestReadMissingFile(t *testing.T) {
	if msgs := Read(filepath.Join(t.TempDir(), "nope.jsonl")); msgs != nil {
		t.Errorf("missing file should yield nil, got %+v", msgs)
	}
}

func TestReadSkipsGarbageLines(t *testing.T) {
	path := writeTranscript(t, "not json\n{\"type\":\"user\",\"message\":{\"role\":\"user\",\"content\":[{\"type\":\"text\",\"text\":\"hi\"}]}}\n")
	msgs := Read(path)
	if len(msgs) != 1 || msgs[0].Text != "hi" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestFromPlainPrompt(t *testing.T) {
	msgs := FromPlainPrompt("do the thing", "t1")
	if len(msgs) != 1 || msgs[0].Type != "user" {
		t.Errorf("msgs = %+v", msgs)
	}
	if FromPlainPrompt("", "") != nil {
		t.Error("empty prompt should yield nil")
	}
}
