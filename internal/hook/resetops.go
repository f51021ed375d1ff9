package hook

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/satyamtg/git-ai/internal/authorship"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
)

// ResetOptions mirrors the git reset flags the wrapper understands.
type ResetOptions struct {
	Mode   string // "soft", "mixed", "hard"
	Target string // revision, default HEAD
	Paths  []string
}

// HandleReset wraps git reset and keeps attribution coherent with the §4.5
// rules: soft and mixed resets migrate the unwound commits' attributions
// into the working log, a hard reset clears the working log, and committed
// notes are never deleted either way.
func HandleReset(c *Context, opts ResetOptions) error {
	if c == nil {
		return fmt.Errorf("not a git-ai repository")
	}
	if opts.Mode == "" {
		opts.Mode = "mixed"
	}
	target := opts.Target
	if target == "" {
		target = "HEAD"
	}

	oldHead := c.Repo.HeadSHA()
	targetSHA, err := git.RevParse(c.Paths.Root, target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}

	// Collect what the reset is about to unwind while it is still reachable.
	var unwound []string
	if oldHead != "" && targetSHA != oldHead {
		if unwound, err = c.Repo.RevList(targetSHA, oldHead); err != nil {
			return err
		}
	}

	if err := runGit(c.Paths.Root, resetArgs(opts)...); err != nil {
		return err
	}

	switch opts.Mode {
	case "hard":
		if len(opts.Paths) > 0 {
			return c.Work.Remove(opts.Paths)
		}
		return c.Work.Clear()
	case "soft", "mixed":
		// A pathspec reset migrates only the named paths' attributions.
		return migrateUnwound(c, unwound, opts.Paths)
	}
	return nil
}

// migrateUnwound unions the notes of unwound commits (oldest first, so later
// commits' entries land later and win) into the working log, anchored on the
// unwound blobs now sitting in the worktree.
func migrateUnwound(c *Context, unwound []string, pathspec []string) error {
	if len(unwound) == 0 {
		return nil
	}
	var logs []*authorship.Log
	blobs := make(map[string]string)
	for _, sha := range unwound {
		data, ok, err := c.Notes.Get(notes.Authorship, sha)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		log, err := authorship.Parse(data)
		if err != nil {
			c.Log.Warnf("reset: note for %s unreadable: %v", sha, err)
			continue
		}
		logs = append(logs, log)
		// Newest unwound commit wins the anchor blob: after a soft reset the
		// worktree holds the old HEAD's content.
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
	if err := c.Work.MigrateFromNotes(logs, blobs, pathspec); err != nil {
		return err
	}
	c.Log.Infof("reset: migrated %d commit note(s) into the working log", len(logs))
	return nil
}

func resetArgs(opts ResetOptions) []string {
	args := []string{"reset"}
	if len(opts.Paths) == 0 {
		args = append(args, "--"+opts.Mode)
	}
	if opts.Target != "" {
		args = append(args, opts.Target)
	}
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}
	return args
}

func runGit(root string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
