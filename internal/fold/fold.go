// Package fold reduces an ordered checkpoint sequence into per-session line
// attributions that are valid against the committed blob.
package fold

import (
	"errors"
	"fmt"
	"sort"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/checkpoint"
	"github.com/satyamtg/git-ai/internal/lineset"
	"github.com/satyamtg/git-ai/internal/textdiff"
)

// ErrStale marks a checkpoint whose recorded pre-image does not match the
// content the previous checkpoint left behind. The checkpoint is skipped,
// never guessed at.
var ErrStale = errors.New("stale checkpoint")

// Session accumulates one AI session's folded state for one path.
type Session struct {
	Agent       authorship.AgentID
	HumanAuthor string
	Transcript  []authorship.Message
	Lines       lineset.Set
	Additions   int
	Deletions   int
	Overridden  int

	firstSeq int
}

// Diag receives non-fatal diagnostics (stale checkpoints) during a fold.
type Diag func(format string, args ...any)

// FileInput describes one path's fold: its checkpoints in sequence order,
// the blob the seed ranges are valid against (the parent commit's content,
// "" for a new file), the committed blob, and per-session line sets carried
// in from the parent commit's log.
type FileInput struct {
	Checkpoints []checkpoint.Checkpoint
	BaseBlob    string
	FinalBlob   string
	Seed        map[string]lineset.Set
}

// File folds one path. Attestation ranges for a touched file cover its whole
// blob: attributions inherited from the parent commit ride along through
// every checkpoint diff, so the result is a full snapshot, not a delta.
// Sessions that end with no lines are still returned so their prompt records
// survive as audit trail.
func File(store *checkpoint.Store, in FileInput, diag Diag) (map[string]*Session, error) {
	if diag == nil {
		diag = func(string, ...any) {}
	}

	sessions := make(map[string]*Session)
	for hash, lines := range in.Seed {
		sessions[hash] = &Session{Lines: lines}
	}

	current := in.BaseBlob
	applied := false // true once a checkpoint has established the baseline
	for _, cp := range in.Checkpoints {
		pre, err := store.PreImage(cp)
		if err != nil {
			return nil, fmt.Errorf("fold %s: read pre-image of seq %d: %w", cp.Path, cp.Seq, err)
		}
		post, err := store.PostImage(cp)
		if err != nil {
			return nil, fmt.Errorf("fold %s: read post-image of seq %d: %w", cp.Path, cp.Seq, err)
		}

		if pre != current {
			if applied {
				diag("%v: seq %d for %s: pre-image mismatch, skipping", ErrStale, cp.Seq, cp.Path)
				continue
			}
			// The first checkpoint may start from worktree content that has
			// drifted from the parent blob the seed is anchored to. Bridge
			// the seed across that gap; the drift itself is human work.
			bridge := textdiff.Hunks(current, pre)
			for _, s := range sessions {
				s.Lines = s.Lines.Reproject(bridge)
			}
			current = pre
		}

		hunks := textdiff.Hunks(pre, post)
		added := lineset.AddedLines(hunks)
		removed := lineset.RemovedLines(hunks)

		// Lines the edit destroys were owned by whoever held them before the
		// reprojection wipes them out.
		overriddenBy := make(map[string]int)
		for hash, s := range sessions {
			overriddenBy[hash] = s.Lines.Intersect(removed).Len()
		}

		for _, s := range sessions {
			s.Lines = s.Lines.Reproject(hunks)
		}

		switch cp.Kind {
		case checkpoint.KindAI:
			hash := cp.Agent.SessionHash()
			s := sessions[hash]
			if s == nil {
				s = &Session{}
				sessions[hash] = s
			}
			if s.firstSeq == 0 {
				s.firstSeq = cp.Seq
				s.Agent = *cp.Agent
			}
			if s.HumanAuthor == "" {
				s.HumanAuthor = cp.HumanAuthor
			}
			if len(cp.Transcript) > len(s.Transcript) {
				s.Transcript = cp.Transcript
			}
			s.Additions += added.Len()
			s.Deletions += removed.Len()
			s.Lines = s.Lines.Union(added)
			// The new content supersedes whatever other sessions held there.
			for hash2, s2 := range sessions {
				if hash2 != hash {
					s2.Lines = s2.Lines.Subtract(added)
				}
			}
		case checkpoint.KindHuman:
			for hash, s := range sessions {
				s.Lines = s.Lines.Subtract(added)
				s.Overridden += overriddenBy[hash]
			}
		default:
			return nil, fmt.Errorf("fold %s: seq %d has unknown kind %q", cp.Path, cp.Seq, cp.Kind)
		}

		current = post
		applied = true
	}

	// The committed blob may differ from the last post-image (staged subset,
	// formatters, manual edits). Transport attributions once more; net-new
	// lines belong to the human and simply stay unattributed.
	if in.FinalBlob != current {
		hunks := textdiff.Hunks(current, in.FinalBlob)
		for _, s := range sessions {
			s.Lines = s.Lines.Reproject(hunks)
		}
	}

	// Clamp to the committed blob: nothing may point past its last line.
	limit := textdiff.LineCount(in.FinalBlob)
	for _, s := range sessions {
		if limit == 0 {
			s.Lines = lineset.Set{}
		} else {
			s.Lines = s.Lines.Intersect(lineset.FromRange(1, limit))
		}
	}
	return sessions, nil
}

// Commit folds every checkpoint with sequence > sinceSeq for the commit's
// file set into an authorship log. parentBlobs and committedBlobs map each
// changed path to its content before and in the commit; paths absent from
// committedBlobs are deleted by the commit. seed is the parent commit's log
// (nil for a root commit); its attributions and counters carry forward so a
// touched file's attestation snapshots the whole blob.
// Returns the log and the highest folded sequence number.
func Commit(store *checkpoint.Store, commitSHA string, parentBlobs, committedBlobs map[string]string, seed *authorship.Log, sinceSeq int, diag Diag) (*authorship.Log, int, error) {
	paths := make([]string, 0, len(committedBlobs))
	for p := range committedBlobs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	cps, err := store.Range(paths, sinceSeq)
	if err != nil {
		return nil, 0, err
	}

	byPath := make(map[string][]checkpoint.Checkpoint)
	var order []string
	maxSeq := sinceSeq
	for _, cp := range cps {
		if _, ok := byPath[cp.Path]; !ok {
			order = append(order, cp.Path)
		}
		byPath[cp.Path] = append(byPath[cp.Path], cp)
		if cp.Seq > maxSeq {
			maxSeq = cp.Seq
		}
	}
	// Touched paths with no checkpoints still carry their inherited
	// attributions through the commit's own diff.
	for _, p := range paths {
		if _, ok := byPath[p]; !ok && seed != nil && seed.File(p) != nil {
			order = append(order, p)
		}
	}

	log := authorship.NewLog(commitSHA)

	// Parent prompt records for sessions attested on the folded paths carry
	// over once, before this commit's deltas are added on top.
	if seed != nil {
		carried := make(map[string]bool)
		for _, p := range order {
			f := seed.File(p)
			if f == nil {
				continue
			}
			for _, e := range f.Entries {
				if carried[e.Hash] {
					continue
				}
				carried[e.Hash] = true
				if rec, ok := seed.Metadata.Prompts[e.Hash]; ok {
					log.MergePrompt(e.Hash, rec)
				}
			}
		}
	}

	for _, path := range order {
		in := FileInput{
			Checkpoints: byPath[path],
			BaseBlob:    parentBlobs[path],
			FinalBlob:   committedBlobs[path],
		}
		if seed != nil {
			in.Seed = seed.EffectiveLines(path)
		}
		sessions, err := File(store, in, diag)
		if err != nil {
			return nil, 0, err
		}
		mergeSessions(log, path, sessions)
	}

	log.Compact()
	log.RecountAccepted()
	return log, maxSeq, nil
}

// mergeSessions appends one path's folded sessions to the log, seeded
// attributions first, then checkpoint contributors in edit order.
func mergeSessions(log *authorship.Log, path string, sessions map[string]*Session) {
	hashes := make([]string, 0, len(sessions))
	for hash := range sessions {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		a, b := sessions[hashes[i]], sessions[hashes[j]]
		if (a.firstSeq == 0) != (b.firstSeq == 0) {
			return a.firstSeq == 0
		}
		if a.firstSeq != b.firstSeq {
			return a.firstSeq < b.firstSeq
		}
		return hashes[i] < hashes[j]
	})

	for _, hash := range hashes {
		s := sessions[hash]
		if s.firstSeq > 0 {
			log.MergePrompt(hash, &authorship.PromptRecord{
				AgentID:        s.Agent,
				HumanAuthor:    s.HumanAuthor,
				Messages:       s.Transcript,
				TotalAdditions: s.Additions,
				TotalDeletions: s.Deletions,
				OverridenLines: s.Overridden,
			})
		} else if s.Overridden > 0 {
			if rec, ok := log.Metadata.Prompts[hash]; ok {
				rec.OverridenLines += s.Overridden
			}
		}
		log.Append(path, hash, s.Lines)
	}
}
