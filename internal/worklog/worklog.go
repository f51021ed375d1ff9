// Package worklog holds attributions that are not yet attached to any
// commit: pending AI work in the worktree or index, and attributions
// unwound from commits by reset, squash merge, or --no-commit picks.
package worklog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/checkpoint"
	"github.com/satyamtg/git-ai/internal/lineset"
	"github.com/satyamtg/git-ai/internal/lockfile"
	"github.com/satyamtg/git-ai/internal/textdiff"
)

// Entry is one pending attribution: a session's lines in a file, valid
// against the blob identified by BlobSHA in the checkpoint blob store.
type Entry struct {
	Hash    string      `json:"hash"`
	Lines   lineset.Set `json:"lines"`
	BlobSHA string      `json:"blob_sha,omitempty"`
}

// FileLog is the ordered entry list for one path. Order mirrors the
// authorship log: a later entry masks an earlier one.
type FileLog struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
}

// Log is the working log payload. Same shape as an authorship log minus the
// base commit.
type Log struct {
	Files   []FileLog                           `json:"files"`
	Prompts map[string]*authorship.PromptRecord `json:"prompts"`
}

// NewLog returns an empty working log.
func NewLog() *Log {
	return &Log{Prompts: make(map[string]*authorship.PromptRecord)}
}

// File returns the file log for a path, or nil.
func (l *Log) File(path string) *FileLog {
	for i := range l.Files {
		if l.Files[i].Path == path {
			return &l.Files[i]
		}
	}
	return nil
}

func (l *Log) ensureFile(path string) *FileLog {
	if f := l.File(path); f != nil {
		return f
	}
	l.Files = append(l.Files, FileLog{Path: path})
	return &l.Files[len(l.Files)-1]
}

// IsEmpty reports whether the log carries nothing.
func (l *Log) IsEmpty() bool {
	return len(l.Files) == 0 && len(l.Prompts) == 0
}

// Store persists the working log as a single per-repository file guarded by
// an exclusive lock. blobDir is the checkpoint store directory whose blobs
// anchor entry line numbers.
type Store struct {
	path    string
	blobDir string
}

// NewStore returns the store for the working log file at path.
func NewStore(path, blobDir string) *Store {
	return &Store{path: path, blobDir: blobDir}
}

func (s *Store) lock() (func(), error) {
	return lockfile.Acquire(s.path+".lock", 5*time.Second)
}

// Load reads the working log; a missing file is an empty log.
func (s *Store) Load() (*Log, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLog(), nil
		}
		return nil, err
	}
	log := NewLog()
	if err := json.Unmarshal(data, log); err != nil {
		return nil, fmt.Errorf("working log %s: %w", s.path, err)
	}
	if log.Prompts == nil {
		log.Prompts = make(map[string]*authorship.PromptRecord)
	}
	return log, nil
}

// Save writes the working log atomically.
func (s *Store) Save(log *Log) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Ingest appends a pending attribution. blobContent is the file state the
// lines are valid against; it is persisted to the blob store so a later
// drain can transport the lines onto the committed blob.
func (s *Store) Ingest(path, hash string, lines lineset.Set, blobContent string, rec *authorship.PromptRecord) error {
	if lines.IsEmpty() {
		return nil
	}
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	log, err := s.Load()
	if err != nil {
		return err
	}
	blobSHA, err := checkpoint.WriteBlob(s.blobDir, blobContent)
	if err != nil {
		return err
	}
	f := log.ensureFile(path)
	f.Entries = append(f.Entries, Entry{Hash: hash, Lines: lines, BlobSHA: blobSHA})
	if rec != nil {
		mergePrompt(log, hash, rec)
	}
	return s.Save(log)
}

// DrainToCommit folds the pending entries for the committed paths into an
// authorship log against the committed blobs, then removes them from the
// working log. Entries for paths outside the commit stay pending.
func (s *Store) DrainToCommit(commitSHA string, committedBlobs map[string]string) (*authorship.Log, error) {
	release, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer release()

	log, err := s.Load()
	if err != nil {
		return nil, err
	}

	out := authorship.NewLog(commitSHA)
	merged := make(map[string]bool)
	var kept []FileLog
	for _, f := range log.Files {
		blob, committed := committedBlobs[f.Path]
		if !committed {
			kept = append(kept, f)
			continue
		}
		for _, e := range f.Entries {
			lines := e.Lines
			if e.BlobSHA != "" {
				if anchor, err := checkpoint.ReadBlob(s.blobDir, e.BlobSHA); err == nil && anchor != blob {
					lines = lines.Reproject(textdiff.Hunks(anchor, blob))
				}
			}
			if limit := textdiff.LineCount(blob); limit > 0 {
				lines = lines.Intersect(lineset.FromRange(1, limit))
			} else {
				lines = lineset.Set{}
			}
			if rec, ok := log.Prompts[e.Hash]; ok && !merged[e.Hash] {
				merged[e.Hash] = true
				out.MergePrompt(e.Hash, rec)
			}
			out.Append(f.Path, e.Hash, lines)
		}
	}

	log.Files = kept
	pruneUnreferencedPrompts(log)
	if err := s.Save(log); err != nil {
		return nil, err
	}

	out.Compact()
	out.RecountAccepted()
	return out, nil
}

// Clear empties the working log.
func (s *Store) Clear() error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()
	return s.Save(NewLog())
}

// Subset returns a copy of the working log restricted to the given paths.
func (s *Store) Subset(paths []string) (*Log, error) {
	log, err := s.Load()
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}
	out := NewLog()
	for _, f := range log.Files {
		if !want[f.Path] {
			continue
		}
		out.Files = append(out.Files, FileLog{Path: f.Path, Entries: append([]Entry(nil), f.Entries...)})
		for _, e := range f.Entries {
			if rec, ok := log.Prompts[e.Hash]; ok {
				out.Prompts[e.Hash] = rec.Clone()
			}
		}
	}
	return out, nil
}

// Remove drops the given paths from the working log. With nil paths it is
// equivalent to Clear.
func (s *Store) Remove(paths []string) error {
	if paths == nil {
		return s.Clear()
	}
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	log, err := s.Load()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}
	var kept []FileLog
	for _, f := range log.Files {
		if !drop[f.Path] {
			kept = append(kept, f)
		}
	}
	log.Files = kept
	pruneUnreferencedPrompts(log)
	return s.Save(log)
}

// MigrateFromNotes unions the attributions of unwound commits into the
// working log. blobs maps each path to the worktree content its ranges are
// now valid against (the unwound commit's blob for soft/mixed resets).
// With a non-nil pathspec, only those paths migrate.
func (s *Store) MigrateFromNotes(logs []*authorship.Log, blobs map[string]string, pathspec []string) error {
	var want map[string]bool
	if pathspec != nil {
		want = make(map[string]bool, len(pathspec))
		for _, p := range pathspec {
			want[p] = true
		}
	}

	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	log, err := s.Load()
	if err != nil {
		return err
	}
	for _, src := range logs {
		merged := make(map[string]bool)
		for _, f := range src.Attestations {
			if want != nil && !want[f.Path] {
				continue
			}
			blobSHA := ""
			if content, ok := blobs[f.Path]; ok {
				if blobSHA, err = checkpoint.WriteBlob(s.blobDir, content); err != nil {
					return err
				}
			}
			dst := log.ensureFile(f.Path)
			for _, e := range f.Entries {
				dst.Entries = append(dst.Entries, Entry{Hash: e.Hash, Lines: e.Lines, BlobSHA: blobSHA})
				if rec, ok := src.Metadata.Prompts[e.Hash]; ok && !merged[e.Hash] {
					merged[e.Hash] = true
					mergePrompt(log, e.Hash, rec)
				}
			}
		}
	}
	return s.Save(log)
}

// Merge unions another working log (e.g. restored from a stash note) into
// this one.
func (s *Store) Merge(other *Log) error {
	release, err := s.lock()
	if err != nil {
		return err
	}
	defer release()

	log, err := s.Load()
	if err != nil {
		return err
	}
	for _, f := range other.Files {
		dst := log.ensureFile(f.Path)
		dst.Entries = append(dst.Entries, f.Entries...)
	}
	for hash, rec := range other.Prompts {
		mergePrompt(log, hash, rec)
	}
	return s.Save(log)
}

// Encode serializes a working log payload for stash-scope storage. The
// encoding is deterministic, so push followed by pop round-trips
// byte-identically.
func Encode(log *Log) ([]byte, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a stash-scope working log payload.
func Decode(data []byte) (*Log, error) {
	log := NewLog()
	if err := json.Unmarshal(data, log); err != nil {
		return nil, err
	}
	if log.Prompts == nil {
		log.Prompts = make(map[string]*authorship.PromptRecord)
	}
	return log, nil
}

func mergePrompt(log *Log, hash string, rec *authorship.PromptRecord) {
	existing, ok := log.Prompts[hash]
	if !ok {
		log.Prompts[hash] = rec.Clone()
		return
	}
	existing.TotalAdditions += rec.TotalAdditions
	existing.TotalDeletions += rec.TotalDeletions
	existing.OverridenLines += rec.OverridenLines
	if existing.HumanAuthor == "" {
		existing.HumanAuthor = rec.HumanAuthor
	}
	if len(rec.Messages) > len(existing.Messages) {
		existing.Messages = append([]authorship.Message(nil), rec.Messages...)
	}
}

func pruneUnreferencedPrompts(log *Log) {
	used := make(map[string]bool)
	for _, f := range log.Files {
		for _, e := range f.Entries {
			used[e.Hash] = true
		}
	}
	for hash := range log.Prompts {
		if !used[hash] {
			delete(log.Prompts, hash)
		}
	}
}
