package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/project"
)

// RunDisable removes git-ai hooks and state from the current repository.
// Authorship notes already attached to commits are left in place.
func RunDisable(args []string) {
	root, err := git.RevParseTopLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(1)
	}
	paths := project.NewPaths(root)

	hooksDir := filepath.Join(paths.GitDir, "hooks")
	for name := range gitHooks {
		hookPath := filepath.Join(hooksDir, name)
		if content, err := os.ReadFile(hookPath); err == nil && strings.Contains(string(content), "git-ai") {
			_ = os.Remove(hookPath)
			fmt.Printf("  ✓ removed %s hook\n", name)
		}
	}

	if err := os.RemoveAll(paths.StateDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing state: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  ✓ git-ai disabled (existing authorship notes kept)")
}
