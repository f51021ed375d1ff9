// Package git shells out to the git binary for repository access. The tool
// never links a git library; it observes and annotates whatever git the user
// runs.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author returns the git user.name config value.
func Author(root string) string {
	out, err := run(root, "config", "user.name")
	if err != nil || out == "" {
		return "unknown"
	}
	return out
}

// RevParseTopLevel returns the git repo root.
func RevParseTopLevel() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// GitDir returns the repository's .git directory (absolute).
func GitDir(root string) (string, error) {
	return run(root, "rev-parse", "--absolute-git-dir")
}

// RevParse resolves a revision to a full commit sha.
func RevParse(root, rev string) (string, error) {
	return run(root, "rev-parse", "--verify", rev+"^{commit}")
}

// HeadSHA returns the current HEAD commit sha, or "" in an empty repo.
func HeadSHA(root string) string {
	out, err := run(root, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// Parents returns the parent shas of a commit in declared order.
func Parents(root, sha string) ([]string, error) {
	out, err := run(root, "rev-list", "--parents", "-n", "1", sha)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return nil, nil
	}
	return fields[1:], nil
}

// MergeBase returns the best common ancestor of two commits.
func MergeBase(root, a, b string) (string, error) {
	return run(root, "merge-base", a, b)
}

// RevList returns the commits reachable from to and not from from, oldest
// first.
func RevList(root, from, to string) ([]string, error) {
	out, err := run(root, "rev-list", "--reverse", from+".."+to)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// ShowFile retrieves file content at a ref. Returns "" with a nil error for
// paths that do not exist at the ref, so callers can treat absence as an
// empty blob. An empty ref reads from the index.
func ShowFile(root, ref, file string) (string, error) {
	cmd := exec.Command("git", "show", ref+":"+file)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 128 {
			return "", nil
		}
		return "", fmt.Errorf("git show %s:%s: %w", ref, file, err)
	}
	return string(out), nil
}

// StagedFile retrieves file content from the index.
func StagedFile(root, file string) (string, error) {
	return ShowFile(root, "", file)
}

// WorktreeFile reads file content from the working tree.
func WorktreeFile(root, file string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// ChangedPaths lists the paths a commit touches relative to its first
// parent (or the empty tree for a root commit).
func ChangedPaths(root, sha string) ([]string, error) {
	out, err := run(root, "diff-tree", "--no-commit-id", "--name-only", "-r", "--root", sha)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// DiffPaths lists paths differing between two revisions. An empty to
// compares from against the working tree.
func DiffPaths(root, from, to string) ([]string, error) {
	args := []string{"diff", "--name-only", from}
	if to != "" {
		args = append(args, to)
	}
	out, err := run(root, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// StagedPaths lists paths staged in the index against HEAD.
func StagedPaths(root string) ([]string, error) {
	out, err := run(root, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// StashSHA resolves a stash ref like "stash@{0}" to its commit sha.
func StashSHA(root, ref string) (string, error) {
	if ref == "" {
		ref = "stash@{0}"
	}
	return run(root, "rev-parse", ref)
}

// RewriteInProgress reports whether a rebase, cherry-pick, or revert is
// currently underway. The engine defers note rewriting until the operation
// terminates cleanly.
func RewriteInProgress(root string) bool {
	gitDir, err := GitDir(root)
	if err != nil {
		return false
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply", "CHERRY_PICK_HEAD", "REVERT_HEAD", "sequencer"} {
		if _, err := os.Stat(filepath.Join(gitDir, marker)); err == nil {
			return true
		}
	}
	return false
}

func run(root string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
