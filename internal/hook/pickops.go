package hook

import (
	"fmt"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/rewrite"
)

// HandleCherryPick wraps git cherry-pick. Committed picks map source commits
// to the new commits 1:1 and reproject; --no-commit picks park the source
// attributions in the working log instead.
func HandleCherryPick(c *Context, commits []string, noCommit bool) error {
	if c == nil {
		return fmt.Errorf("not a git-ai repository")
	}
	if len(commits) == 0 {
		return fmt.Errorf("cherry-pick: no commits given")
	}

	oldHead := c.Repo.HeadSHA()

	args := []string{"cherry-pick"}
	if noCommit {
		args = append(args, "--no-commit")
	}
	args = append(args, commits...)
	if err := runGit(c.Paths.Root, args...); err != nil {
		// The pick stopped (conflict or abort); attribution waits until the
		// operation terminates cleanly.
		return err
	}

	if noCommit {
		return migrateSourceCommits(c, commits)
	}

	produced, err := c.Repo.RevList(oldHead, c.Repo.HeadSHA())
	if err != nil {
		return err
	}
	if len(produced) == 0 {
		return nil // picks came up empty (already applied)
	}
	if len(produced) != len(commits) {
		c.Log.Warnf("cherry-pick: %d source commit(s) produced %d new; skipping attribution", len(commits), len(produced))
		return nil
	}

	var pairs []rewrite.Pair
	for i, src := range commits {
		pairs = append(pairs, rewrite.Pair{Old: src, New: produced[i]})
	}
	mapping, err := rewrite.BuildMapping(pairs, commits, false)
	if err != nil {
		c.Log.Errorf("cherry-pick: %v", err)
		return nil
	}
	engine := rewrite.NewEngine(c.Repo, c.Notes, func(format string, args ...any) {
		c.Log.Debugf(format, args...)
	})
	if err := engine.Apply(mapping); err != nil {
		c.Log.Errorf("cherry-pick: %v", err)
	}
	return nil
}

// HandleMergeSquash wraps git merge --squash: the source branch commits'
// attributions aggregate into the working log, pending the follow-up commit.
func HandleMergeSquash(c *Context, branch string) error {
	if c == nil {
		return fmt.Errorf("not a git-ai repository")
	}
	head := c.Repo.HeadSHA()
	base, err := c.Repo.MergeBase(head, branch)
	if err != nil {
		return err
	}
	sources, err := c.Repo.RevList(base, branch)
	if err != nil {
		return err
	}

	if err := runGit(c.Paths.Root, "merge", "--squash", branch); err != nil {
		return err
	}
	return migrateSourceCommits(c, sources)
}

// migrateSourceCommits places the attributions of source commits into the
// working log, anchored on the source blobs now present in the worktree.
func migrateSourceCommits(c *Context, sources []string) error {
	var logs []*authorship.Log
	blobs := make(map[string]string)
	for _, sha := range sources {
		data, ok, err := c.Notes.Get(notes.Authorship, sha)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		log, err := authorship.Parse(data)
		if err != nil {
			c.Log.Warnf("note for %s unreadable: %v", sha, err)
			continue
		}
		logs = append(logs, log)
		for _, f := range log.Attestations {
			blob, err := c.Repo.ShowFile(sha, f.Path)
			if err == nil && blob != "" {
				blobs[f.Path] = blob
			}
		}
	}
	if len(logs) == 0 {
		return nil
	}
	if err := c.Work.MigrateFromNotes(logs, blobs, nil); err != nil {
		return err
	}
	c.Log.Infof("migrated %d source note(s) into the working log", len(logs))
	return nil
}
