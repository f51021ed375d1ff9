package authorship

import (
	"errors"
	"strings"
	"testing"

	"github.com/satyamtg/git-ai/internal/lineset"
)

func sampleLog() *Log {
	log := NewLog("0123456789abcdef0123456789abcdef01234567")
	s1 := SessionHash("claude-code", "conv-1")
	s2 := SessionHash("cursor", "conv-2")
	log.Metadata.Prompts[s1] = &PromptRecord{
		AgentID:  AgentID{Tool: "claude-code", ID: "conv-1", Model: "claude-sonnet-4-5"},
		Messages: []Message{{Type: "user", Text: "add the parser"}},
	}
	log.Metadata.Prompts[s2] = &PromptRecord{
		AgentID: AgentID{Tool: "cursor", ID: "conv-2", Model: "gpt-5"},
	}
	log.Append("src/parser.go", s1, lineset.FromRange(1, 20))
	log.Append("src/parser.go", s2, lineset.New(5, 6, 30))
	log.Append("docs/README.md", s1, lineset.New(3))
	log.RecountAccepted()
	return log
}

func TestEmitParseRoundTrip(t *testing.T) {
	log := sampleLog()
	data, err := log.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if parsed.Metadata.SchemaVersion != SchemaVersion {
		t.Errorf("schema_version = %q", parsed.Metadata.SchemaVersion)
	}
	if parsed.Metadata.BaseCommitSHA != log.Metadata.BaseCommitSHA {
		t.Errorf("base_commit_sha = %q", parsed.Metadata.BaseCommitSHA)
	}
	if len(parsed.Attestations) != len(log.Attestations) {
		t.Fatalf("attestation count = %d, want %d", len(parsed.Attestations), len(log.Attestations))
	}
	for i, f := range log.Attestations {
		pf := parsed.Attestations[i]
		if pf.Path != f.Path {
			t.Errorf("file %d path = %q, want %q", i, pf.Path, f.Path)
		}
		for j, e := range f.Entries {
			if pf.Entries[j].Hash != e.Hash || !pf.Entries[j].Lines.Equal(e.Lines) {
				t.Errorf("file %s entry %d = %s %s, want %s %s",
					f.Path, j, pf.Entries[j].Hash, pf.Entries[j].Lines, e.Hash, e.Lines)
			}
		}
	}
	if len(parsed.Metadata.Prompts) != 2 {
		t.Errorf("prompts = %d, want 2", len(parsed.Metadata.Prompts))
	}

	// Emitting the parsed log must reproduce the bytes: identical logs hash
	// identically.
	data2, err := parsed.Emit()
	if err != nil {
		t.Fatalf("re-Emit: %v", err)
	}
	if string(data) != string(data2) {
		t.Errorf("emit not deterministic:\n%s\n----\n%s", data, data2)
	}
}

func TestEmitWireShape(t *testing.T) {
	log := NewLog("deadbeef")
	s1 := "d9978a8723e02b52"
	log.Metadata.Prompts[s1] = &PromptRecord{AgentID: AgentID{Tool: "claude-code", ID: "x", Model: "m"}}
	log.Append("a.txt", s1, lineset.FromRange(1, 3))

	data, err := log.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "a.txt\n  d9978a8723e02b52 1-3\n---\n") {
		t.Errorf("unexpected wire prefix:\n%s", text)
	}
	if !strings.Contains(text, `"overriden_lines": 0`) {
		t.Errorf("metadata must use the overriden_lines spelling:\n%s", text)
	}
	if !strings.Contains(text, `"schema_version": "authorship/3.0.0"`) {
		t.Errorf("missing schema version:\n%s", text)
	}
}

func TestEmitQuotesPathsWithSpaces(t *testing.T) {
	log := NewLog("deadbeef")
	s1 := SessionHash("cursor", "c")
	log.Metadata.Prompts[s1] = &PromptRecord{AgentID: AgentID{Tool: "cursor", ID: "c", Model: "m"}}
	log.Append("docs/READ ME.md", s1, lineset.New(1))

	data, err := log.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.HasPrefix(string(data), "\"docs/READ ME.md\"\n") {
		t.Errorf("path with space not quoted:\n%s", data)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Attestations[0].Path != "docs/READ ME.md" {
		t.Errorf("round-tripped path = %q", parsed.Attestations[0].Path)
	}
}

func TestEmitRejectsQuoteInPath(t *testing.T) {
	log := NewLog("deadbeef")
	s1 := SessionHash("cursor", "c")
	log.Metadata.Prompts[s1] = &PromptRecord{AgentID: AgentID{Tool: "cursor", ID: "c", Model: "m"}}
	log.Append(`bad"name.txt`, s1, lineset.New(1))
	if _, err := log.Emit(); err == nil {
		t.Error("expected error for path containing a double quote")
	}
}

func TestParseMalformed(t *testing.T) {
	meta := `{"schema_version":"authorship/3.0.0","base_commit_sha":"x","prompts":{"aaaaaaaaaaaaaaaa":{"agent_id":{"tool":"t","id":"i","model":"m"},"messages":[],"total_additions":0,"total_deletions":0,"accepted_lines":0,"overriden_lines":0}}}`

	tests := []struct {
		name  string
		input string
	}{
		{name: "missing_divider", input: "a.txt\n  aaaaaaaaaaaaaaaa 1-3\n" + meta},
		{name: "one_space_indent", input: "a.txt\n aaaaaaaaaaaaaaaa 1-3\n---\n" + meta},
		{name: "three_space_indent", input: "a.txt\n   aaaaaaaaaaaaaaaa 1-3\n---\n" + meta},
		{name: "tab_indent", input: "a.txt\n\taaaaaaaaaaaaaaaa 1-3\n---\n" + meta},
		{name: "non_hex_hash", input: "a.txt\n  ZZZZZZZZZZZZZZZZ 1-3\n---\n" + meta},
		{name: "hash_too_short", input: "a.txt\n  abc123 1-3\n---\n" + meta},
		{name: "descending_ranges", input: "a.txt\n  aaaaaaaaaaaaaaaa 5,3\n---\n" + meta},
		{name: "overlapping_ranges", input: "a.txt\n  aaaaaaaaaaaaaaaa 1-5,4-8\n---\n" + meta},
		{name: "entry_before_file", input: "  aaaaaaaaaaaaaaaa 1-3\n---\n" + meta},
		{name: "bad_json", input: "a.txt\n  aaaaaaaaaaaaaaaa 1-3\n---\n{not json"},
		{name: "unknown_prompt_hash", input: "a.txt\n  bbbbbbbbbbbbbbbb 1-3\n---\n" + meta},
		{name: "missing_range_spec", input: "a.txt\n  aaaaaaaaaaaaaaaa\n---\n" + meta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrMalformedLog) {
				t.Errorf("Parse = %v, want ErrMalformedLog", err)
			}
		})
	}
}

func TestParseAcceptsShortHashes(t *testing.T) {
	meta := `{"schema_version":"authorship/3.0.0","base_commit_sha":"x","prompts":{"abc1234":{"agent_id":{"tool":"t","id":"i","model":"m"},"messages":[],"total_additions":0,"total_deletions":0,"accepted_lines":0,"overriden_lines":0}}}`
	log, err := Parse([]byte("a.txt\n  abc1234 1-3\n---\n" + meta))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if log.Attestations[0].Entries[0].Hash != "abc1234" {
		t.Errorf("hash = %q", log.Attestations[0].Entries[0].Hash)
	}
}

func TestParseRejectsToolResponseMessages(t *testing.T) {
	meta := `{"schema_version":"authorship/3.0.0","base_commit_sha":"x","prompts":{"aaaaaaaaaaaaaaaa":{"agent_id":{"tool":"t","id":"i","model":"m"},"messages":[{"type":"tool_result","text":"out"}],"total_additions":0,"total_deletions":0,"accepted_lines":0,"overriden_lines":0}}}`
	_, err := Parse([]byte("---\n" + meta))
	if !errors.Is(err, ErrMalformedLog) {
		t.Errorf("Parse = %v, want ErrMalformedLog", err)
	}
}
