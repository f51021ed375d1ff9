// Package checkpoint implements the append-only per-edit store that hook
// invocations write and commit-time folding consumes.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/lockfile"
)

// Kind classifies who made an edit.
type Kind string

const (
	KindHuman Kind = "human"
	KindAI    Kind = "ai"
)

// ErrCorrupt marks an unrecoverable store state, e.g. duplicate sequence
// numbers. Callers must abort without writing.
var ErrCorrupt = errors.New("checkpoint store corrupt")

// Checkpoint is one recorded edit. Pre and post images live in the blob
// directory, content-addressed by SHA-256.
type Checkpoint struct {
	Seq         int                  `json:"seq"`
	Kind        Kind                 `json:"kind"`
	Path        string               `json:"path"`
	PreSHA      string               `json:"pre_sha"`
	PostSHA     string               `json:"post_sha"`
	Agent       *authorship.AgentID  `json:"agent,omitempty"`
	HumanAuthor string               `json:"human_author,omitempty"`
	Transcript  []authorship.Message `json:"transcript,omitempty"`
	Ts          string               `json:"ts"`
}

// Store is a repository-local checkpoint directory. One worktree has one
// store; producers serialize through the lock file.
type Store struct {
	dir string
}

// NewStore returns the store rooted at dir (normally .git/git-ai/checkpoints).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) lockPath() string {
	return filepath.Join(s.dir, "lock")
}

// Append writes an immutable checkpoint record and its pre/post image blobs,
// returning the assigned sequence number.
func (s *Store) Append(kind Kind, agent *authorship.AgentID, humanAuthor, path, preImage, postImage string, transcript []authorship.Message) (int, error) {
	release, err := lockfile.Acquire(s.lockPath(), 5*time.Second)
	if err != nil {
		return 0, fmt.Errorf("checkpoint append: %w", err)
	}
	defer release()

	seqs, err := s.sequences()
	if err != nil {
		return 0, err
	}
	next := 1
	if len(seqs) > 0 {
		next = seqs[len(seqs)-1] + 1
	}

	preSHA, err := WriteBlob(s.dir, preImage)
	if err != nil {
		return 0, fmt.Errorf("checkpoint append: %w", err)
	}
	postSHA, err := WriteBlob(s.dir, postImage)
	if err != nil {
		return 0, fmt.Errorf("checkpoint append: %w", err)
	}

	cp := Checkpoint{
		Seq:         next,
		Kind:        kind,
		Path:        path,
		PreSHA:      preSHA,
		PostSHA:     postSHA,
		Agent:       agent,
		HumanAuthor: humanAuthor,
		Transcript:  filterTranscript(transcript),
		Ts:          time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(s.recordPath(next), data, 0o644); err != nil {
		return 0, fmt.Errorf("checkpoint append: %w", err)
	}
	return next, nil
}

// Range returns checkpoints for the given paths with sequence > sinceSeq, in
// sequence order. A nil path set selects every path.
func (s *Store) Range(paths []string, sinceSeq int) ([]Checkpoint, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var want map[string]bool
	if paths != nil {
		want = make(map[string]bool, len(paths))
		for _, p := range paths {
			want[p] = true
		}
	}

	var out []Checkpoint
	for _, cp := range all {
		if cp.Seq <= sinceSeq {
			continue
		}
		if want != nil && !want[cp.Path] {
			continue
		}
		out = append(out, cp)
	}
	return out, nil
}

// MaxSeq returns the highest sequence number in the store, 0 when empty.
func (s *Store) MaxSeq() (int, error) {
	seqs, err := s.sequences()
	if err != nil {
		return 0, err
	}
	if len(seqs) == 0 {
		return 0, nil
	}
	return seqs[len(seqs)-1], nil
}

// ClearUpTo removes records with sequence <= seq. Called after a successful
// commit fold and notes write. Blobs are left in place; they are cheap and
// may back later records.
func (s *Store) ClearUpTo(seq int) error {
	release, err := lockfile.Acquire(s.lockPath(), 5*time.Second)
	if err != nil {
		return err
	}
	defer release()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		n, ok := parseRecordName(e.Name())
		if !ok || n > seq {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// PreImage reads a checkpoint's pre-image content.
func (s *Store) PreImage(cp Checkpoint) (string, error) {
	return ReadBlob(s.dir, cp.PreSHA)
}

// PostImage reads a checkpoint's post-image content.
func (s *Store) PostImage(cp Checkpoint) (string, error) {
	return ReadBlob(s.dir, cp.PostSHA)
}

func (s *Store) recordPath(seq int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%08d.json", seq))
}

// sequences lists record sequence numbers ascending, detecting duplicates.
func (s *Store) sequences() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	seen := make(map[int]bool)
	var seqs []int
	for _, e := range entries {
		n, ok := parseRecordName(e.Name())
		if !ok {
			continue
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate sequence %d", ErrCorrupt, n)
		}
		seen[n] = true
		seqs = append(seqs, n)
	}
	sort.Ints(seqs)
	return seqs, nil
}

func (s *Store) readAll() ([]Checkpoint, error) {
	seqs, err := s.sequences()
	if err != nil {
		return nil, err
	}
	out := make([]Checkpoint, 0, len(seqs))
	for _, n := range seqs {
		data, err := os.ReadFile(s.recordPath(n))
		if err != nil {
			return nil, err
		}
		var cp Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorrupt, n, err)
		}
		if cp.Seq != n {
			return nil, fmt.Errorf("%w: record %08d.json claims seq %d", ErrCorrupt, n, cp.Seq)
		}
		out = append(out, cp)
	}
	return out, nil
}

func parseRecordName(name string) (int, bool) {
	if !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// filterTranscript drops tool-response entries; the log format forbids them.
func filterTranscript(msgs []authorship.Message) []authorship.Message {
	var out []authorship.Message
	for _, m := range msgs {
		switch m.Type {
		case "user", "assistant", "tool_use":
			out = append(out, m)
		}
	}
	return out
}
