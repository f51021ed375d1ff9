package cmd

import (
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/hook"
)

// RunStash wraps git stash with stash-scope attribution preservation.
func RunStash(args []string) {
	sub := "push"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	c := hook.NewContext()
	defer c.Close()

	var err error
	switch sub {
	case "push":
		err = hook.HandleStashPush(c, args)
	case "pop":
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		err = hook.HandleStashPop(c, ref)
	case "apply":
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		err = hook.HandleStashApply(c, ref)
	default:
		fmt.Fprintln(os.Stderr, "Usage: git-ai stash <push|pop|apply> [args]")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
