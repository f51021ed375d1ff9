// Package hook implements the handlers behind `git-ai hook <name>` and the
// wrapper commands for operations plain hooks cannot observe. Handlers never
// fail the host git command: errors land in the diagnostic log and the
// handler exits clean.
package hook

import (
	"github.com/satyamtg/git-ai/internal/checkpoint"
	"github.com/satyamtg/git-ai/internal/config"
	"github.com/satyamtg/git-ai/internal/debug"
	"github.com/satyamtg/git-ai/internal/git"
	"github.com/satyamtg/git-ai/internal/notes"
	"github.com/satyamtg/git-ai/internal/project"
	"github.com/satyamtg/git-ai/internal/worklog"
)

// Context bundles the per-repository handles a handler needs. Acquired at
// operation entry, released via Close on every exit path.
type Context struct {
	Paths  project.Paths
	Config config.Config
	Log    *debug.Logger
	Store  *checkpoint.Store
	Work   *worklog.Store
	Notes  *notes.Store
	Repo   git.Repo
}

// NewContext resolves the repository and opens all handles. Returns nil if
// the repo is not initialized for git-ai; callers treat that as a no-op.
func NewContext() *Context {
	root, err := project.FindRoot()
	if err != nil {
		return nil
	}
	if !project.IsInitialized(root) {
		return nil
	}
	paths := project.NewPaths(root)
	cfg, _ := config.Load(paths.ConfigFile)
	return &Context{
		Paths:  paths,
		Config: cfg,
		Log:    debug.Open(paths.LogsDir, cfg.Debug),
		Store:  checkpoint.NewStore(paths.CheckpointDir),
		Work:   worklog.NewStore(paths.WorkingLog, paths.CheckpointDir),
		Notes:  notes.NewStore(root),
		Repo:   git.Repo{Root: root},
	}
}

// Close releases the context's resources.
func (c *Context) Close() {
	if c != nil && c.Log != nil {
		c.Log.Close()
	}
}
