package project

import (
	"os"
	"path/filepath"

	"github.com/satyamtg/git-ai/internal/git"
)

// Paths holds the repository-local locations git-ai uses. Everything lives
// under .git/git-ai/ so nothing pollutes the worktree.
type Paths struct {
	Root          string // git repo root
	GitDir        string // .git directory
	StateDir      string // .git/git-ai/
	CheckpointDir string // .git/git-ai/checkpoints/
	WorkingLog    string // .git/git-ai/working_log.json
	LogsDir       string // .git/git-ai/logs/
	PromptDB      string // .git/git-ai/prompts.db
	ConfigFile    string // .git/git-ai/config.toml
	MarkerFile    string // .git/git-ai/last_folded_seq
}

// FindRoot returns the git project root, preferring CLAUDE_PROJECT_DIR if set
// (hook payloads may arrive with an arbitrary working directory).
func FindRoot() (string, error) {
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	return git.RevParseTopLevel()
}

// NewPaths constructs all path constants from a project root.
func NewPaths(root string) Paths {
	gitDir, err := git.GitDir(root)
	if err != nil {
		gitDir = filepath.Join(root, ".git")
	}
	state := filepath.Join(gitDir, "git-ai")
	return Paths{
		Root:          root,
		GitDir:        gitDir,
		StateDir:      state,
		CheckpointDir: filepath.Join(state, "checkpoints"),
		WorkingLog:    filepath.Join(state, "working_log.json"),
		LogsDir:       filepath.Join(state, "logs"),
		PromptDB:      filepath.Join(state, "prompts.db"),
		ConfigFile:    filepath.Join(state, "config.toml"),
		MarkerFile:    filepath.Join(state, "last_folded_seq"),
	}
}

// RelPath converts an absolute path to a project-relative path with forward
// slashes. Paths already relative pass through unchanged.
func RelPath(absPath, root string) string {
	if absPath == "" || !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// IsInitialized returns true if git-ai state exists for the repo.
func IsInitialized(root string) bool {
	p := NewPaths(root)
	info, err := os.Stat(p.StateDir)
	return err == nil && info.IsDir()
}
