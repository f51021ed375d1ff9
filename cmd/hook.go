package cmd

import (
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/internal/hook"
)

// RunHook dispatches `git-ai hook <name>`. Hook handlers never fail the host
// operation: every error path exits zero after logging.
func RunHook(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: git-ai hook <prompt-submit|pre-tool-use|post-tool-use|post-commit|post-merge|post-rewrite>")
		os.Exit(1)
	}

	c := hook.NewContext()
	defer c.Close()

	switch args[0] {
	case "prompt-submit":
		_ = hook.HandlePromptSubmit(c, os.Stdin)
	case "pre-tool-use":
		_ = hook.HandlePreToolUse(c, os.Stdin)
	case "post-tool-use":
		_ = hook.HandlePostToolUse(c, os.Stdin)
	case "post-commit":
		_ = hook.HandlePostCommit(c)
	case "post-merge":
		_ = hook.HandlePostMerge(c)
	case "post-rewrite":
		operation := "rebase"
		if len(args) > 1 {
			operation = args[1]
		}
		_ = hook.HandlePostRewrite(c, operation, os.Stdin)
	default:
		fmt.Fprintf(os.Stderr, "Unknown hook: %s\n", args[0])
		os.Exit(1)
	}
}
