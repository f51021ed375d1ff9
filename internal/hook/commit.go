package hook

import (
	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/fold"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/promptdb"
)

// HandlePostCommit folds the accumulated checkpoints and the drained working
// log into an authorship note for the new HEAD commit. Any failure leaves the
// commit alone and the checkpoints in place for a later retry.
func HandlePostCommit(c *Context) error {
	if c == nil {
		return nil
	}
	if c.Repo.RewriteInProgress() {
		c.Log.Infof("post-commit: rewrite in progress, deferring")
		return nil
	}

	commitSHA := c.Repo.HeadSHA()
	if commitSHA == "" {
		return nil
	}
	parentSHA := ""
	if parents, err := c.Repo.Parents(commitSHA); err == nil && len(parents) > 0 {
		parentSHA = parents[0]
	}

	changed, err := c.Repo.ChangedPaths(commitSHA)
	if err != nil {
		c.Log.Errorf("post-commit: changed paths: %v", err)
		return nil
	}

	parentBlobs := make(map[string]string, len(changed))
	committedBlobs := make(map[string]string, len(changed))
	for _, p := range changed {
		blob, err := c.Repo.ShowFile(commitSHA, p)
		if err != nil {
			c.Log.Errorf("post-commit: blob %s: %v", p, err)
			return nil
		}
		committedBlobs[p] = blob
		if parentSHA != "" {
			if blob, err := c.Repo.ShowFile(parentSHA, p); err == nil {
				parentBlobs[p] = blob
			}
		}
	}

	// Seed from the commit's own note when one exists (an amend whose
	// transported note the rewrite engine already wrote), else from the
	// parent's. A self-seed is anchored on the committed blobs themselves.
	var seed *authorship.Log
	if data, ok, err := c.Notes.Get(notes.Authorship, commitSHA); err == nil && ok {
		if parsed, err := authorship.Parse(data); err == nil {
			seed = parsed
			for p, blob := range committedBlobs {
				parentBlobs[p] = blob
			}
		} else {
			c.Log.Warnf("post-commit: own note unreadable: %v", err)
		}
	}
	if seed == nil && parentSHA != "" {
		if data, ok, err := c.Notes.Get(notes.Authorship, parentSHA); err == nil && ok {
			if parsed, err := authorship.Parse(data); err == nil {
				seed = parsed
			} else {
				c.Log.Warnf("post-commit: parent note unreadable: %v", err)
			}
		}
	}

	diag := func(format string, args ...any) { c.Log.Warnf(format, args...) }
	log, maxSeq, err := fold.Commit(c.Store, commitSHA, parentBlobs, committedBlobs, seed, 0, diag)
	if err != nil {
		c.Log.Errorf("post-commit: fold aborted, checkpoints kept: %v", err)
		return nil
	}

	// AI work on files outside this commit moves to the working log so a
	// later commit can still claim it.
	if err := preserveUncommittedWork(c, committedBlobs, maxSeq); err != nil {
		c.Log.Errorf("post-commit: preserving uncommitted work: %v", err)
		return nil
	}

	// Attributions staged by resets, squash merges, or --no-commit picks
	// drain into this commit alongside the checkpoint fold.
	drained, err := c.Work.DrainToCommit(commitSHA, committedBlobs)
	if err != nil {
		c.Log.Errorf("post-commit: working log drain: %v", err)
		return nil
	}
	mergeLogs(log, drained)

	log.Compact()
	log.RecountAccepted()
	if log.IsEmpty() {
		if err := c.Store.ClearUpTo(maxSeq); err != nil {
			c.Log.Errorf("post-commit: clear checkpoints: %v", err)
		}
		return nil
	}

	if db, err := promptdb.Open(c.Paths.PromptDB); err == nil {
		if err := db.SaveAll(log); err != nil {
			c.Log.Warnf("post-commit: prompt db save: %v", err)
		}
		db.Close()
	}

	if c.Config.IgnorePrompts {
		for _, rec := range log.Metadata.Prompts {
			rec.Messages = nil
		}
	}

	data, err := log.Emit()
	if err != nil {
		c.Log.Errorf("post-commit: emit: %v", err)
		return nil
	}
	if err := c.Notes.Put(notes.Authorship, commitSHA, data); err != nil {
		c.Log.Errorf("post-commit: notes write failed, checkpoints kept: %v", err)
		return nil
	}
	if err := c.Store.ClearUpTo(maxSeq); err != nil {
		c.Log.Errorf("post-commit: clear checkpoints: %v", err)
	}
	c.Log.Infof("post-commit: wrote authorship note for %s", commitSHA)
	return nil
}

// HandlePostMerge attaches attributions to a merge commit only for AI work
// done during conflict resolution; parent notes are never reprojected.
func HandlePostMerge(c *Context) error {
	if c == nil {
		return nil
	}
	mergeSHA := c.Repo.HeadSHA()
	if mergeSHA == "" {
		return nil
	}
	parents, err := c.Repo.Parents(mergeSHA)
	if err != nil || len(parents) < 2 {
		return nil
	}

	cps, err := c.Store.Range(nil, 0)
	if err != nil {
		c.Log.Errorf("post-merge: %v", err)
		return nil
	}
	if len(cps) == 0 {
		return nil
	}

	// Only the conflict-resolution edits recorded during the merge count;
	// fold them without any inherited seed.
	committedBlobs := make(map[string]string)
	for _, cp := range cps {
		if _, ok := committedBlobs[cp.Path]; ok {
			continue
		}
		blob, err := c.Repo.ShowFile(mergeSHA, cp.Path)
		if err != nil {
			c.Log.Errorf("post-merge: blob %s: %v", cp.Path, err)
			return nil
		}
		committedBlobs[cp.Path] = blob
	}

	diag := func(format string, args ...any) { c.Log.Warnf(format, args...) }
	log, maxSeq, err := fold.Commit(c.Store, mergeSHA, nil, committedBlobs, nil, 0, diag)
	if err != nil {
		c.Log.Errorf("post-merge: fold: %v", err)
		return nil
	}
	if !log.IsEmpty() {
		data, err := log.Emit()
		if err != nil {
			c.Log.Errorf("post-merge: emit: %v", err)
			return nil
		}
		if err := c.Notes.Put(notes.Authorship, mergeSHA, data); err != nil {
			c.Log.Errorf("post-merge: notes write: %v", err)
			return nil
		}
	}
	if err := c.Store.ClearUpTo(maxSeq); err != nil {
		c.Log.Errorf("post-merge: clear checkpoints: %v", err)
	}
	return nil
}

// preserveUncommittedWork folds checkpoints for paths outside the commit
// against their current worktree content and parks the result in the working
// log before those checkpoints are cleared.
func preserveUncommittedWork(c *Context, committedBlobs map[string]string, maxSeq int) error {
	cps, err := c.Store.Range(nil, 0)
	if err != nil {
		return err
	}
	byPath := make(map[string][]int)
	for i, cp := range cps {
		if _, committed := committedBlobs[cp.Path]; committed || cp.Seq > maxSeq {
			continue
		}
		byPath[cp.Path] = append(byPath[cp.Path], i)
	}

	for path, idxs := range byPath {
		worktree, err := git.WorktreeFile(c.Paths.Root, path)
		if err != nil {
			return err
		}
		in := fold.FileInput{FinalBlob: worktree}
		for _, i := range idxs {
			in.Checkpoints = append(in.Checkpoints, cps[i])
		}
		sessions, err := fold.File(c.Store, in, func(format string, args ...any) { c.Log.Warnf(format, args...) })
		if err != nil {
			return err
		}
		for hash, s := range sessions {
			if s.Lines.IsEmpty() {
				continue
			}
			rec := &authorship.PromptRecord{
				AgentID:        s.Agent,
				HumanAuthor:    s.HumanAuthor,
				Messages:       s.Transcript,
				TotalAdditions: s.Additions,
				TotalDeletions: s.Deletions,
				OverridenLines: s.Overridden,
			}
			if err := c.Work.Ingest(path, hash, s.Lines, worktree, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeLogs folds src's attestations and prompts into dst.
func mergeLogs(dst, src *authorship.Log) {
	for hash, rec := range src.Metadata.Prompts {
		dst.MergePrompt(hash, rec)
	}
	for _, f := range src.Attestations {
		for _, e := range f.Entries {
			dst.Append(f.Path, e.Hash, e.Lines)
		}
	}
}
