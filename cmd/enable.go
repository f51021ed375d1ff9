package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/project"
)

// RunEnable handles the "enable" subcommand: it creates the repository state
// directory, installs the git hooks, and optionally registers the Claude
// Code hooks globally.
func RunEnable(args []string) {
	fs := flag.NewFlagSet("enable", flag.ExitOnError)
	global := fs.Bool("global", false, "Also configure Claude Code hooks globally")
	fs.Parse(args)

	if *global {
		enableGlobal()
	}
	enableRepo()
}

var gitHooks = map[string]string{
	"post-commit":  "hook post-commit",
	"post-merge":   "hook post-merge",
	"post-rewrite": "hook post-rewrite \"$1\"",
}

func enableRepo() {
	root, err := git.RevParseTopLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: not inside a git repository")
		os.Exit(1)
	}
	fmt.Printf("Initializing git-ai in %s\n", root)

	paths := project.NewPaths(root)
	for _, dir := range []string{paths.StateDir, paths.CheckpointDir, paths.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	binaryPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not determine binary path: %v\n", err)
		os.Exit(1)
	}

	hooksDir := filepath.Join(paths.GitDir, "hooks")
	_ = os.MkdirAll(hooksDir, 0o755)
	for name, invocation := range gitHooks {
		script := fmt.Sprintf("#!/bin/sh\n# git-ai\nif [ -x %q ]; then\n  %s %s </dev/stdin || true\nfi\n",
			binaryPath, binaryPath, invocation)
		hookPath := filepath.Join(hooksDir, name)
		if existing, err := os.ReadFile(hookPath); err == nil && !strings.Contains(string(existing), "git-ai") {
			fmt.Printf("  ! %s already exists and is not ours, skipping\n", name)
			continue
		}
		if err := os.WriteFile(hookPath, []byte(script), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s hook: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ installed %s hook\n", name)
	}

	fmt.Println("  ✓ git-ai enabled")
}

func enableGlobal() {
	fmt.Println("Configuring Claude Code hooks...")

	binaryPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not determine binary path: %v\n", err)
		os.Exit(1)
	}

	settingsFile := filepath.Join(os.Getenv("HOME"), ".claude", "settings.json")
	_ = os.MkdirAll(filepath.Dir(settingsFile), 0o755)

	var settings map[string]interface{}
	if data, err := os.ReadFile(settingsFile); err == nil {
		_ = json.Unmarshal(data, &settings)
	}
	if settings == nil {
		settings = map[string]interface{}{}
	}

	hooks, _ := settings["hooks"].(map[string]interface{})
	if hooks == nil {
		hooks = map[string]interface{}{}
	}

	entries := []struct {
		key     string
		matcher string
		command string
	}{
		{"UserPromptSubmit", "", binaryPath + " hook prompt-submit"},
		{"PreToolUse", "Edit|Write|MultiEdit|NotebookEdit", binaryPath + " hook pre-tool-use"},
		{"PostToolUse", "Edit|Write|MultiEdit|NotebookEdit", binaryPath + " hook post-tool-use"},
	}
	for _, e := range entries {
		filtered := filterHookEntries(hooks, e.key, "git-ai")
		entry := map[string]interface{}{
			"hooks": []interface{}{map[string]interface{}{"type": "command", "command": e.command}},
		}
		if e.matcher != "" {
			entry["matcher"] = e.matcher
		}
		hooks[e.key] = append(filtered, entry)
	}
	settings["hooks"] = hooks

	b, _ := json.MarshalIndent(settings, "", "  ")
	if err := os.WriteFile(settingsFile, append(b, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Claude Code hooks configured in %s\n", settingsFile)
}

func filterHookEntries(hooks map[string]interface{}, key, exclude string) []interface{} {
	existing, _ := hooks[key].([]interface{})
	var filtered []interface{}
	for _, entry := range existing {
		e, ok := entry.(map[string]interface{})
		if !ok {
			filtered = append(filtered, entry)
			continue
		}
		hooksList, _ := e["hooks"].([]interface{})
		hasExcluded := false
		for _, h := range hooksList {
			hm, ok := h.(map[string]interface{})
			if ok {
				cmd, _ := hm["command"].(string)
				if strings.Contains(cmd, exclude) {
					hasExcluded = true
					break
				}
			}
		}
		if !hasExcluded {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
