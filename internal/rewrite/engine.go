package rewrite

import (
	"errors"
	"fmt"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/lineset"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/textdiff"
)

// ErrPartialFailure means some notes in a batch were written and then rolled
// back after a later write failed. The original notes are untouched.
var ErrPartialFailure = errors.New("partial rewrite failure, batch rolled back")

// ErrInProgress means a rewrite operation has not terminated; no notes are
// written until it completes cleanly.
var ErrInProgress = errors.New("history rewrite still in progress")

// Repo is the blob and topology access the engine needs.
type Repo interface {
	ShowFile(ref, path string) (string, error)
	ChangedPaths(sha string) ([]string, error)
	Parents(sha string) ([]string, error)
	RewriteInProgress() bool
}

// NotesStore is the slice of the notes adapter the engine uses.
type NotesStore interface {
	Get(ns notes.Namespace, key string) ([]byte, bool, error)
	Put(ns notes.Namespace, key string, data []byte) error
	Delete(ns notes.Namespace, key string) error
}

// Diag receives engine diagnostics.
type Diag func(format string, args ...any)

// Engine re-emits authorship logs for a commit mapping.
type Engine struct {
	repo  Repo
	notes NotesStore
	diag  Diag
}

// NewEngine returns an engine over the given repository and notes store.
func NewEngine(repo Repo, store NotesStore, diag Diag) *Engine {
	if diag == nil {
		diag = func(string, ...any) {}
	}
	return &Engine{repo: repo, notes: store, diag: diag}
}

type pendingWrite struct {
	key  string
	data []byte
}

// Apply processes a mapping's entries in order (new commits oldest first)
// and writes the resulting logs. All writes for the mapping land together:
// if any entry fails, notes already written in this batch are deleted and
// the originals stay authoritative.
func (e *Engine) Apply(m Mapping) error {
	if e.repo.RewriteInProgress() {
		return ErrInProgress
	}

	var writes []pendingWrite
	for _, entry := range m.Entries {
		w, err := e.process(entry)
		if err != nil {
			return err
		}
		writes = append(writes, w...)
	}

	for i, w := range writes {
		if err := e.notes.Put(notes.Authorship, w.key, w.data); err != nil {
			for _, done := range writes[:i] {
				if derr := e.notes.Delete(notes.Authorship, done.key); derr != nil {
					e.diag("rollback of %s failed: %v", done.key, derr)
				}
			}
			return fmt.Errorf("%w: writing %s: %v", ErrPartialFailure, w.key, err)
		}
	}
	return nil
}

func (e *Engine) process(entry Entry) ([]pendingWrite, error) {
	switch entry.Kind {
	case Rename, Edit:
		return e.processRename(entry)
	case Squash:
		return e.processSquash(entry)
	case Split:
		return e.processSplit(entry)
	case Drop:
		// Attributions die with the commit. If the content resurfaces later
		// through conflict resolution it is human work.
		return nil, nil
	case ConflictResolved, WorkingMigration:
		// Parent notes stay untouched; any attributions for the new state
		// arrive via the working log, not via reprojection.
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unhandled mapping kind %q", ErrMappingUnknown, entry.Kind)
}

// skip reports whether newSHA already carries a note: the entry was processed
// before, or the commit came from the target branch with its own history.
func (e *Engine) skip(newSHA string) (bool, error) {
	_, ok, err := e.notes.Get(notes.Authorship, newSHA)
	if err != nil {
		return false, err
	}
	if ok {
		e.diag("commit %s already has an authorship note, skipping", newSHA)
	}
	return ok, nil
}

func (e *Engine) loadLog(sha string) (*authorship.Log, error) {
	data, ok, err := e.notes.Get(notes.Authorship, sha)
	if err != nil || !ok {
		return nil, err
	}
	log, err := authorship.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("note for %s: %w", sha, err)
	}
	return log, nil
}

func (e *Engine) emit(log *authorship.Log) ([]pendingWrite, error) {
	log.Compact()
	log.RecountAccepted()
	// Empty attestations with surviving prompts still get written: the audit
	// trail outlives the lines. A log with neither is skipped.
	if log.IsEmpty() {
		return nil, nil
	}
	data, err := log.Emit()
	if err != nil {
		return nil, err
	}
	return []pendingWrite{{key: log.Metadata.BaseCommitSHA, data: data}}, nil
}

// processRename transports a 1:1 rewrite. Paths untouched by the rewrite
// carry attribution verbatim; shifted paths reproject through the blob diff.
// For Edit entries, lines the rewrite destroyed count as overridden.
func (e *Engine) processRename(entry Entry) ([]pendingWrite, error) {
	newSHA := entry.News[0]
	if done, err := e.skip(newSHA); err != nil || done {
		return nil, err
	}
	newLog, err := e.transport(entry.Originals[0], newSHA, entry.Kind)
	if err != nil || newLog == nil {
		return nil, err
	}
	return e.emit(newLog)
}

// TransportEdit reprojects one original commit's log onto newSHA with edit
// semantics and returns it without writing or idempotence checks. Used for
// amends, where a post-commit fold may already have written a note for the
// replacement commit that the caller wants to merge with.
func (e *Engine) TransportEdit(orig, newSHA string) (*authorship.Log, error) {
	return e.transport(orig, newSHA, Edit)
}

func (e *Engine) transport(orig, newSHA string, kind Kind) (*authorship.Log, error) {
	origLog, err := e.loadLog(orig)
	if err != nil {
		return nil, err
	}
	if origLog == nil {
		return nil, nil
	}

	newLog := authorship.NewLog(newSHA)
	for hash, rec := range origLog.Metadata.Prompts {
		newLog.MergePrompt(hash, rec)
	}

	for _, f := range origLog.Attestations {
		origBlob, err := e.repo.ShowFile(orig, f.Path)
		if err != nil {
			return nil, err
		}
		newBlob, err := e.repo.ShowFile(newSHA, f.Path)
		if err != nil {
			return nil, err
		}
		hunks := textdiff.Hunks(origBlob, newBlob)
		for _, ent := range f.Entries {
			moved := ent.Lines.Reproject(hunks)
			if kind == Edit {
				if lost := ent.Lines.Len() - moved.Len(); lost > 0 {
					if rec, ok := newLog.Metadata.Prompts[ent.Hash]; ok {
						rec.OverridenLines += lost
					}
				}
			}
			newLog.Append(f.Path, ent.Hash, moved)
		}
	}
	return newLog, nil
}

// processSquash overlays the originals' per-file snapshots, newest mention
// winning, and transports each onto the squash commit's blob. Prompt records
// come from the latest original that carries the session; counters in a
// snapshot log already accumulate over history, so later records replace
// earlier ones rather than adding.
func (e *Engine) processSquash(entry Entry) ([]pendingWrite, error) {
	newSHA := entry.News[0]
	if done, err := e.skip(newSHA); err != nil || done {
		return nil, err
	}

	newLog := authorship.NewLog(newSHA)
	latestByPath := make(map[string]string) // path -> original holding its newest snapshot
	var pathOrder []string
	logs := make(map[string]*authorship.Log)

	for _, orig := range entry.Originals {
		origLog, err := e.loadLog(orig)
		if err != nil {
			return nil, err
		}
		if origLog == nil {
			continue
		}
		logs[orig] = origLog
		for _, f := range origLog.Attestations {
			if _, seen := latestByPath[f.Path]; !seen {
				pathOrder = append(pathOrder, f.Path)
			}
			latestByPath[f.Path] = orig
		}
		for hash, rec := range origLog.Metadata.Prompts {
			replacePrompt(newLog, hash, rec)
		}
	}

	for _, path := range pathOrder {
		orig := latestByPath[path]
		f := logs[orig].File(path)
		origBlob, err := e.repo.ShowFile(orig, path)
		if err != nil {
			return nil, err
		}
		newBlob, err := e.repo.ShowFile(newSHA, path)
		if err != nil {
			return nil, err
		}
		hunks := textdiff.Hunks(origBlob, newBlob)
		for _, ent := range f.Entries {
			newLog.Append(path, ent.Hash, ent.Lines.Reproject(hunks))
		}
	}
	return e.emit(newLog)
}

// processSplit distributes one original's attributions over the commits it
// was split into: each new commit keeps only the attributed lines that its
// own diff introduces.
func (e *Engine) processSplit(entry Entry) ([]pendingWrite, error) {
	orig := entry.Originals[0]
	origLog, err := e.loadLog(orig)
	if err != nil {
		return nil, err
	}
	if origLog == nil {
		return nil, nil
	}

	var writes []pendingWrite
	for _, newSHA := range entry.News {
		if done, err := e.skip(newSHA); err != nil {
			return nil, err
		} else if done {
			continue
		}

		parents, err := e.repo.Parents(newSHA)
		if err != nil {
			return nil, err
		}
		parent := ""
		if len(parents) > 0 {
			parent = parents[0]
		}
		changed, err := e.repo.ChangedPaths(newSHA)
		if err != nil {
			return nil, err
		}
		changedSet := make(map[string]bool, len(changed))
		for _, p := range changed {
			changedSet[p] = true
		}

		newLog := authorship.NewLog(newSHA)
		for hash, rec := range origLog.Metadata.Prompts {
			newLog.MergePrompt(hash, rec)
		}

		for _, f := range origLog.Attestations {
			if !changedSet[f.Path] {
				continue
			}
			parentBlob := ""
			if parent != "" {
				if parentBlob, err = e.repo.ShowFile(parent, f.Path); err != nil {
					return nil, err
				}
			}
			newBlob, err := e.repo.ShowFile(newSHA, f.Path)
			if err != nil {
				return nil, err
			}
			introduced := lineset.AddedLines(textdiff.Hunks(parentBlob, newBlob))

			origBlob, err := e.repo.ShowFile(orig, f.Path)
			if err != nil {
				return nil, err
			}
			transport := textdiff.Hunks(origBlob, newBlob)
			for _, ent := range f.Entries {
				newLog.Append(f.Path, ent.Hash, ent.Lines.Reproject(transport).Intersect(introduced))
			}
		}

		w, err := e.emit(newLog)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w...)
	}
	return writes, nil
}

// replacePrompt installs rec for hash, replacing an earlier original's
// record; messages union so no transcript is lost.
func replacePrompt(log *authorship.Log, hash string, rec *authorship.PromptRecord) {
	existing, ok := log.Metadata.Prompts[hash]
	if !ok {
		log.Metadata.Prompts[hash] = rec.Clone()
		return
	}
	merged := rec.Clone()
	merged.Messages = existing.Messages
	log.Metadata.Prompts[hash] = merged
	log.MergePrompt(hash, &authorship.PromptRecord{Messages: rec.Messages})
}
