package hook

import (
	"fmt"

	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/worklog"
)

// HandleStashPush wraps git stash push: the pending attributions for the
// stashed paths move to a stash-scope note keyed by the stash commit, and
// leave the working log.
func HandleStashPush(c *Context, extraArgs []string) error {
	if c == nil {
		return fmt.Errorf("not a git-ai repository")
	}

	// Everything modified against HEAD is about to be stashed.
	stashed, err := git.DiffPaths(c.Paths.Root, "HEAD", "")
	if err != nil {
		stashed = nil
	}
	staged, _ := c.Repo.StagedPaths()
	stashed = append(stashed, staged...)

	subset, err := c.Work.Subset(stashed)
	if err != nil {
		return err
	}

	args := append([]string{"stash", "push"}, extraArgs...)
	if err := runGit(c.Paths.Root, args...); err != nil {
		return err
	}

	if subset.IsEmpty() {
		return nil
	}
	stashSHA, err := c.Repo.StashSHA("stash@{0}")
	if err != nil {
		return err
	}
	data, err := worklog.Encode(subset)
	if err != nil {
		return err
	}
	if err := c.Notes.Put(notes.StashScope, stashSHA, data); err != nil {
		return err
	}
	if err := c.Work.Remove(stashed); err != nil {
		return err
	}
	c.Log.Infof("stash push: preserved working log for %d path(s) under %s", len(subset.Files), stashSHA)
	return nil
}

// HandleStashPop wraps git stash pop: the stash-scope note returns to the
// working log and is deleted.
func HandleStashPop(c *Context, ref string) error {
	return stashRestore(c, ref, "pop", true)
}

// HandleStashApply wraps git stash apply: the note returns to the working
// log but stays attached to the stash commit.
func HandleStashApply(c *Context, ref string) error {
	return stashRestore(c, ref, "apply", false)
}

func stashRestore(c *Context, ref, subcommand string, deleteAfter bool) error {
	if c == nil {
		return fmt.Errorf("not a git-ai repository")
	}
	if ref == "" {
		ref = "stash@{0}"
	}

	// Resolve before the pop drops the ref.
	stashSHA, err := c.Repo.StashSHA(ref)
	if err != nil {
		return err
	}

	if err := runGit(c.Paths.Root, "stash", subcommand, ref); err != nil {
		return err
	}

	data, ok, err := c.Notes.Get(notes.StashScope, stashSHA)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	restored, err := worklog.Decode(data)
	if err != nil {
		return fmt.Errorf("stash-scope note for %s: %w", stashSHA, err)
	}
	if err := c.Work.Merge(restored); err != nil {
		return err
	}
	if deleteAfter {
		if err := c.Notes.Delete(notes.StashScope, stashSHA); err != nil {
			return err
		}
	}
	c.Log.Infof("stash %s: restored working log from %s", subcommand, stashSHA)
	return nil
}
