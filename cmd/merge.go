package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/hook"
)

// RunMerge wraps git merge --squash with working-log aggregation. Plain
// merges don't need the wrapper: the post-merge hook covers them.
func RunMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	squash := fs.Bool("squash", false, "Squash-merge the branch, staging its changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai merge --squash <branch>")
	}
	fs.Parse(args)

	if !*squash || fs.Arg(0) == "" {
		fs.Usage()
		os.Exit(1)
	}

	c := hook.NewContext()
	defer c.Close()
	if err := hook.HandleMergeSquash(c, fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
