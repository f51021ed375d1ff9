package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/hook"
)

// RunReset wraps git reset with attribution migration.
func RunReset(args []string) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	soft := fs.Bool("soft", false, "Move HEAD only; index and worktree keep the unwound changes")
	mixed := fs.Bool("mixed", false, "Move HEAD and reset the index (default)")
	hard := fs.Bool("hard", false, "Reset HEAD, index, and worktree")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: git-ai reset [--soft|--mixed|--hard] [<commit>] [-- <paths>...]")
	}
	fs.Parse(args)

	opts := hook.ResetOptions{Mode: "mixed"}
	switch {
	case *soft:
		opts.Mode = "soft"
	case *hard:
		opts.Mode = "hard"
	case *mixed:
		opts.Mode = "mixed"
	}

	rest := fs.Args()
	for i, a := range rest {
		if a == "--" {
			opts.Paths = rest[i+1:]
			rest = rest[:i]
			break
		}
	}
	if len(rest) > 0 {
		opts.Target = rest[0]
	}

	c := hook.NewContext()
	defer c.Close()
	if err := hook.HandleReset(c, opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
