package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/hook"
)

// RunCherryPick wraps git cherry-pick with attribution transport.
func RunCherryPick(args []string) {
	fs := flag.NewFlagSet("cherry-pick", flag.ExitOnError)
	noCommit := fs.Bool("n", false, "Apply to worktree and index without committing")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai cherry-pick [-n] <commit>...")
	}
	fs.Parse(args)

	c := hook.NewContext()
	defer c.Close()
	if err := hook.HandleCherryPick(c, fs.Args(), *noCommit); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
