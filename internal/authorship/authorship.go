// Package authorship defines the authorship log attached to commits: per-file
// attestations mapping AI session hashes to line ranges, plus the prompt
// records for those sessions.
package authorship

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/satyamtg/git-ai/internal/lineset"
)

// SchemaVersion identifies the log format emitted by this tool.
const SchemaVersion = "authorship/3.0.0"

// AgentID identifies one AI agent session.
type AgentID struct {
	Tool  string `json:"tool"`
	ID    string `json:"id"`
	Model string `json:"model"`
}

// SessionHash returns the first 16 hex chars of SHA-256 over "{tool}:{id}".
// This is the key used in attestations and the prompts map.
func (a AgentID) SessionHash() string {
	return SessionHash(a.Tool, a.ID)
}

// SessionHash computes the stable session fingerprint for a tool and
// conversation id.
func SessionHash(tool, conversationID string) string {
	h := sha256.Sum256([]byte(tool + ":" + conversationID))
	return fmt.Sprintf("%x", h)[:16]
}

// Message is one transcript entry. Type is "user", "assistant", or
// "tool_use"; tool responses are never recorded.
type Message struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
}

// PromptRecord carries the metadata for one AI session: identity, transcript,
// and line counters. The overriden_lines spelling is intentional: existing
// logs in the wild use it and emitting anything else would orphan them.
type PromptRecord struct {
	AgentID        AgentID   `json:"agent_id"`
	HumanAuthor    string    `json:"human_author,omitempty"`
	Messages       []Message `json:"messages"`
	TotalAdditions int       `json:"total_additions"`
	TotalDeletions int       `json:"total_deletions"`
	AcceptedLines  int       `json:"accepted_lines"`
	OverridenLines int       `json:"overriden_lines"`
	MessagesURL    string    `json:"messages_url,omitempty"`
}

// Clone returns a deep copy of the record.
func (p *PromptRecord) Clone() *PromptRecord {
	c := *p
	c.Messages = append([]Message(nil), p.Messages...)
	return &c
}

// Entry is one attestation: a session hash and the lines it owns.
type Entry struct {
	Hash  string
	Lines lineset.Set
}

// FileAttestation holds the ordered attestation entries for one file.
// Order is load-bearing: a later entry masks an earlier one at query time,
// so entries are never re-sorted.
type FileAttestation struct {
	Path    string
	Entries []Entry
}

// Metadata is the JSON section below the divider.
type Metadata struct {
	SchemaVersion string                   `json:"schema_version"`
	BaseCommitSHA string                   `json:"base_commit_sha"`
	GitAiVersion  string                   `json:"git_ai_version,omitempty"`
	Prompts       map[string]*PromptRecord `json:"prompts"`
}

// Log is the complete authorship artifact for one commit.
type Log struct {
	Attestations []FileAttestation
	Metadata     Metadata
}

// NewLog returns an empty log for the given base commit.
func NewLog(baseCommitSHA string) *Log {
	return &Log{
		Metadata: Metadata{
			SchemaVersion: SchemaVersion,
			BaseCommitSHA: baseCommitSHA,
			Prompts:       make(map[string]*PromptRecord),
		},
	}
}

// File returns the attestation for a path, or nil.
func (l *Log) File(path string) *FileAttestation {
	for i := range l.Attestations {
		if l.Attestations[i].Path == path {
			return &l.Attestations[i]
		}
	}
	return nil
}

// EnsureFile returns the attestation for a path, appending one if missing.
func (l *Log) EnsureFile(path string) *FileAttestation {
	if f := l.File(path); f != nil {
		return f
	}
	l.Attestations = append(l.Attestations, FileAttestation{Path: path})
	return &l.Attestations[len(l.Attestations)-1]
}

// Append adds an attestation entry for a file, keeping insertion order.
func (l *Log) Append(path, hash string, lines lineset.Set) {
	if lines.IsEmpty() {
		return
	}
	f := l.EnsureFile(path)
	f.Entries = append(f.Entries, Entry{Hash: hash, Lines: lines})
}

// AttributionAt resolves the session owning a line, honoring entry order:
// the latest entry covering the line wins. Returns the session hash and its
// prompt record, or "" and nil for human-authored lines.
func (l *Log) AttributionAt(path string, line int) (string, *PromptRecord) {
	f := l.File(path)
	if f == nil {
		return "", nil
	}
	for i := len(f.Entries) - 1; i >= 0; i-- {
		if f.Entries[i].Lines.Contains(line) {
			return f.Entries[i].Hash, l.Metadata.Prompts[f.Entries[i].Hash]
		}
	}
	return "", nil
}

// EffectiveLines reassembles the per-session line sets for a file with
// later entries masking earlier ones.
func (l *Log) EffectiveLines(path string) map[string]lineset.Set {
	f := l.File(path)
	if f == nil {
		return nil
	}
	out := make(map[string]lineset.Set)
	var claimed lineset.Set
	for i := len(f.Entries) - 1; i >= 0; i-- {
		e := f.Entries[i]
		owned := e.Lines.Subtract(claimed)
		claimed = claimed.Union(e.Lines)
		if !owned.IsEmpty() {
			out[e.Hash] = out[e.Hash].Union(owned)
		}
	}
	return out
}

// Compact drops empty entries and files with no entries left. Prompt records
// are never pruned: a session whose lines were all overridden keeps its
// record as audit trail.
func (l *Log) Compact() {
	var files []FileAttestation
	for _, f := range l.Attestations {
		var entries []Entry
		for _, e := range f.Entries {
			if !e.Lines.IsEmpty() {
				entries = append(entries, e)
			}
		}
		if len(entries) > 0 {
			f.Entries = entries
			files = append(files, f)
		}
	}
	l.Attestations = files
}

// IsEmpty reports whether the log has neither attestations nor prompts.
func (l *Log) IsEmpty() bool {
	return len(l.Attestations) == 0 && len(l.Metadata.Prompts) == 0
}

// RecountAccepted recomputes every prompt record's accepted_lines from the
// current attestations, honoring entry-order masking.
func (l *Log) RecountAccepted() {
	counts := make(map[string]int)
	for _, f := range l.Attestations {
		for hash, owned := range l.EffectiveLines(f.Path) {
			counts[hash] += owned.Len()
		}
	}
	for hash, p := range l.Metadata.Prompts {
		p.AcceptedLines = counts[hash]
	}
}

// MergePrompt folds a prompt record into the log's prompts map. Counters add;
// message transcripts union, deduplicated by timestamp+type+text.
func (l *Log) MergePrompt(hash string, rec *PromptRecord) {
	existing, ok := l.Metadata.Prompts[hash]
	if !ok {
		l.Metadata.Prompts[hash] = rec.Clone()
		return
	}
	existing.TotalAdditions += rec.TotalAdditions
	existing.TotalDeletions += rec.TotalDeletions
	existing.OverridenLines += rec.OverridenLines
	if existing.HumanAuthor == "" {
		existing.HumanAuthor = rec.HumanAuthor
	}
	seen := make(map[string]bool, len(existing.Messages))
	for _, m := range existing.Messages {
		seen[messageKey(m)] = true
	}
	for _, m := range rec.Messages {
		if !seen[messageKey(m)] {
			existing.Messages = append(existing.Messages, m)
			seen[messageKey(m)] = true
		}
	}
}

func messageKey(m Message) string {
	h := sha256.Sum256([]byte(m.Timestamp + "\x00" + m.Type + "\x00" + m.Text))
	return fmt.Sprintf("%x", h[:8])
}
