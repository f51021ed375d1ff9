package main

import (
	"fmt"
	"os"

	"github.com/satyamtg/git-ai/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "hook":
		cmd.RunHook(os.Args[2:])
	case "checkpoint":
		cmd.RunCheckpoint(os.Args[2:])
	case "blame":
		cmd.RunBlame(os.Args[2:])
	case "show":
		cmd.RunShow(os.Args[2:])
	case "reset":
		cmd.RunReset(os.Args[2:])
	case "stash":
		cmd.RunStash(os.Args[2:])
	case "cherry-pick":
		cmd.RunCherryPick(os.Args[2:])
	case "merge":
		cmd.RunMerge(os.Args[2:])
	case "enable":
		cmd.RunEnable(os.Args[2:])
	case "disable":
		cmd.RunDisable(os.Args[2:])
	case "--version":
		fmt.Println("git-ai", version)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `git-ai: track which lines were written by AI agents, across rewrites.

Usage:
    git-ai blame [-L <line>[,<line>]] [-v] <file>   # per-line attribution
    git-ai checkpoint <file>...                     # record worktree state
    git-ai show [--raw] [<commit>]                  # a commit's authorship note
    git-ai reset [--soft|--mixed|--hard] [<commit>] # reset with migration
    git-ai stash <push|pop|apply>                   # stash with preservation
    git-ai cherry-pick [-n] <commit>...             # pick with transport
    git-ai merge --squash <branch>                  # squash-merge aggregation
    git-ai enable [--global]                        # install hooks
    git-ai disable                                  # remove hooks and state
    git-ai hook <name>                              # internal hook entry

`)
}
