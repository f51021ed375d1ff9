package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/satyamtg/git-ai/internal/authorship"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "checkpoints"))
}

func TestAppendAssignsMonotonicSequences(t *testing.T) {
	s := testStore(t)
	agent := &authorship.AgentID{Tool: "claude-code", ID: "c1", Model: "m"}

	seq1, err := s.Append(KindAI, agent, "", "a.txt", "", "x\n", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	seq2, err := s.Append(KindHuman, nil, "alice", "a.txt", "x\n", "x\ny\n", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if seq1 != 1 || seq2 != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", seq1, seq2)
	}

	cps, err := s.Range(nil, 0)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(cps) != 2 {
		t.Fatalf("Range returned %d checkpoints", len(cps))
	}
	if cps[0].Kind != KindAI || cps[1].Kind != KindHuman {
		t.Errorf("kinds = %s, %s", cps[0].Kind, cps[1].Kind)
	}

	pre, err := s.PreImage(cps[1])
	if err != nil {
		t.Fatalf("PreImage: %v", err)
	}
	if pre != "x\n" {
		t.Errorf("pre-image = %q", pre)
	}
	post, err := s.PostImage(cps[1])
	if err != nil {
		t.Fatalf("PostImage: %v", err)
	}
	if post != "x\ny\n" {
		t.Errorf("post-image = %q", post)
	}
}

func TestRangeFiltersByPathAndSeq(t *testing.T) {
	s := testStore(t)
	agent := &authorship.AgentID{Tool: "t", ID: "c", Model: "m"}
	for _, p := range []string{"a.txt", "b.txt", "a.txt"} {
		if _, err := s.Append(KindAI, agent, "", p, "", "x\n", nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Range([]string{"a.txt"}, 0)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 3 {
		t.Errorf("Range(a.txt, 0) = %+v", got)
	}

	got, err = s.Range([]string{"a.txt"}, 1)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 1 || got[0].Seq != 3 {
		t.Errorf("Range(a.txt, 1) = %+v", got)
	}
}

func TestClearUpTo(t *testing.T) {
	s := testStore(t)
	agent := &authorship.AgentID{Tool: "t", ID: "c", Model: "m"}
	for i := 0; i < 3; i++ {
		if _, err := s.Append(KindAI, agent, "", "a.txt", "", "x\n", nil); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.ClearUpTo(2); err != nil {
		t.Fatalf("ClearUpTo: %v", err)
	}
	got, err := s.Range(nil, 0)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 1 || got[0].Seq != 3 {
		t.Errorf("after ClearUpTo(2): %+v", got)
	}

	// New appends continue from the high-water mark, not from 1.
	seq, err := s.Append(KindAI, agent, "", "a.txt", "x\n", "y\n", nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if seq != 4 {
		t.Errorf("next seq = %d, want 4", seq)
	}
}

func TestDuplicateSequenceIsCorruption(t *testing.T) {
	s := testStore(t)
	agent := &authorship.AgentID{Tool: "t", ID: "c", Model: "m"}
	if _, err := s.Append(KindAI, agent, "", "a.txt", "", "x\n", nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Simulate a corrupted store: a second file claiming sequence 1.
	if err := os.WriteFile(filepath.Join(s.Dir(), "001.json"), []byte(`{"seq":1,"kind":"ai","path":"a.txt"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Range(nil, 0)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Range = %v, want ErrCorrupt", err)
	}
	_, err = s.Append(KindAI, agent, "", "a.txt", "", "y\n", nil)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Append = %v, want ErrCorrupt", err)
	}
}

func TestTranscriptToolResponsesDropped(t *testing.T) {
	s := testStore(t)
	agent := &authorship.AgentID{Tool: "t", ID: "c", Model: "m"}
	msgs := []authorship.Message{
		{Type: "user", Text: "do it"},
		{Type: "tool_result", Text: "noise"},
		{Type: "assistant", Text: "done"},
	}
	if _, err := s.Append(KindAI, agent, "", "a.txt", "", "x\n", msgs); err != nil {
		t.Fatalf("Append: %v", err)
	}
	cps, err := s.Range(nil, 0)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(cps[0].Transcript) != 2 {
		t.Errorf("transcript = %+v, want tool_result dropped", cps[0].Transcript)
	}
}

func TestBlobDedup(t *testing.T) {
	dir := t.TempDir()
	sha1, err := WriteBlob(dir, "same content")
	if err != nil {
		t.Fatal(err)
	}
	sha2, err := WriteBlob(dir, "same content")
	if err != nil {
		t.Fatal(err)
	}
	if sha1 != sha2 {
		t.Errorf("dedup shas differ: %s vs %s", sha1, sha2)
	}
	got, err := ReadBlob(dir, sha1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "same content" {
		t.Errorf("ReadBlob = %q", got)
	}
}
