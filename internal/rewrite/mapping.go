// Package rewrite carries authorship logs across history-rewriting
// operations: it maps original commits to their rewritten successors and
// re-emits each log against the new blobs.
package rewrite

import (
	"errors"
	"fmt"
)

// Kind tags how a set of original commits relates to a set of new commits.
type Kind string

const (
	// Rename is a 1:1 rewrite (rebase pick, committed cherry-pick).
	Rename Kind = "rename"
	// Squash folds N originals into one new commit.
	Squash Kind = "squash"
	// Split distributes one original over N new commits.
	Split Kind = "split"
	// Edit is a 1:1 rewrite with human changes on top (amend, rebase edit).
	Edit Kind = "edit"
	// Drop discards an original; its attributions die with it.
	Drop Kind = "drop"
	// ConflictResolved marks a merge commit: it receives attributions only
	// for conflict-resolution work, parents keep their own notes.
	ConflictResolved Kind = "conflict-resolved"
	// WorkingMigration moves attributions into the working log instead of a
	// commit (merge --squash, reset --soft, cherry-pick --no-commit).
	WorkingMigration Kind = "working-migration"
)

// Entry is one mapping in an operation: which originals became which news.
type Entry struct {
	Kind      Kind
	Originals []string
	News      []string
}

// Mapping is the full commit mapping for one history-rewriting operation.
// Entries are ordered oldest new commit first; it is consumed once by the
// engine and discarded.
type Mapping struct {
	Entries []Entry
}

// ErrMappingUnknown means the operation's outcome cannot be determined; the
// engine refuses to write anything.
var ErrMappingUnknown = errors.New("commit mapping unknown")

// Pair is one old→new line as reported by git's post-rewrite hook.
type Pair struct {
	Old string
	New string
}

// BuildMapping derives a mapping from post-rewrite pairs. originals is the
// pre-operation commit list (oldest first) when known; originals absent from
// the pairs become Drop entries. amend marks the operation as an amend, which
// makes 1:1 entries Edit instead of Rename.
func BuildMapping(pairs []Pair, originals []string, amend bool) (Mapping, error) {
	if len(pairs) == 0 && len(originals) == 0 {
		return Mapping{}, fmt.Errorf("%w: empty rewrite snapshot", ErrMappingUnknown)
	}

	oldsByNew := make(map[string][]string)
	newsByOld := make(map[string][]string)
	var newOrder []string
	for _, p := range pairs {
		if p.Old == "" || p.New == "" {
			return Mapping{}, fmt.Errorf("%w: incomplete pair %q -> %q", ErrMappingUnknown, p.Old, p.New)
		}
		if _, seen := oldsByNew[p.New]; !seen {
			newOrder = append(newOrder, p.New)
		}
		oldsByNew[p.New] = append(oldsByNew[p.New], p.Old)
		newsByOld[p.Old] = append(newsByOld[p.Old], p.New)
	}

	var m Mapping
	splitDone := make(map[string]bool)
	for _, newSHA := range newOrder {
		olds := oldsByNew[newSHA]
		if len(olds) > 1 {
			// N:1. If any of those originals also maps elsewhere the
			// operation interleaved squash and split; that outcome cannot be
			// attributed safely.
			for _, old := range olds {
				if len(newsByOld[old]) > 1 {
					return Mapping{}, fmt.Errorf("%w: commit %s both squashed and split", ErrMappingUnknown, old)
				}
			}
			m.Entries = append(m.Entries, Entry{Kind: Squash, Originals: olds, News: []string{newSHA}})
			continue
		}
		old := olds[0]
		news := newsByOld[old]
		if len(news) > 1 {
			if splitDone[old] {
				continue
			}
			splitDone[old] = true
			m.Entries = append(m.Entries, Entry{Kind: Split, Originals: []string{old}, News: news})
			continue
		}
		kind := Rename
		if amend {
			kind = Edit
		}
		m.Entries = append(m.Entries, Entry{Kind: kind, Originals: []string{old}, News: []string{newSHA}})
	}

	rewritten := make(map[string]bool)
	for _, p := range pairs {
		rewritten[p.Old] = true
	}
	for _, old := range originals {
		if !rewritten[old] {
			m.Entries = append(m.Entries, Entry{Kind: Drop, Originals: []string{old}})
		}
	}
	return m, nil
}

// MergeMapping returns the mapping for a merge commit: parents keep their
// notes, the merge commit itself is marked conflict-resolved.
func MergeMapping(mergeSHA string) Mapping {
	return Mapping{Entries: []Entry{{Kind: ConflictResolved, News: []string{mergeSHA}}}}
}
