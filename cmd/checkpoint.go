package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/checkpoint"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/hook"
	"github.com/satyamtg/git-ai/internal/project"
)

// RunCheckpoint records the current worktree state of the given files as
// human checkpoints, so subsequent AI edits diff against it instead of being
// blamed for earlier manual work.
func RunCheckpoint(args []string) {
	fs := flag.NewFlagSet("checkpoint", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai checkpoint <file>...")
	}
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	c := hook.NewContext()
	defer c.Close()
	if c == nil {
		fmt.Fprintln(os.Stderr, "Error: git-ai is not enabled in this repository")
		os.Exit(1)
	}

	author := git.Author(c.Paths.Root)
	recorded := 0
	for _, arg := range fs.Args() {
		rel := project.RelPath(arg, c.Paths.Root)
		worktree, err := git.WorktreeFile(c.Paths.Root, rel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", rel, err)
			os.Exit(1)
		}
		last := hook.LastRecordedContent(c, rel)
		if last == worktree {
			continue
		}
		if _, err := c.Store.Append(checkpoint.KindHuman, nil, author, rel, last, worktree, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		recorded++
	}
	fmt.Printf("Recorded %d checkpoint(s)\n", recorded)
}
