package git

// Repo is a handle on one repository, passed to components that need blob
// and topology access without reaching for package-level functions.
type Repo struct {
	Root string
}

// ShowFile reads a blob at ref:path; "" for absent paths.
func (r Repo) ShowFile(ref, path string) (string, error) {
	return ShowFile(r.Root, ref, path)
}

// ChangedPaths lists the paths a commit touches.
func (r Repo) ChangedPaths(sha string) ([]string, error) {
	return ChangedPaths(r.Root, sha)
}

// Parents returns a commit's parents.
func (r Repo) Parents(sha string) ([]string, error) {
	return Parents(r.Root, sha)
}

// RewriteInProgress reports an in-flight rebase/cherry-pick/revert.
func (r Repo) RewriteInProgress() bool {
	return RewriteInProgress(r.Root)
}

// HeadSHA returns the current HEAD commit sha, "" in an empty repo.
func (r Repo) HeadSHA() string {
	return HeadSHA(r.Root)
}

// MergeBase returns the best common ancestor of two commits.
func (r Repo) MergeBase(a, b string) (string, error) {
	return MergeBase(r.Root, a, b)
}

// RevList returns from..to, oldest first.
func (r Repo) RevList(from, to string) ([]string, error) {
	return RevList(r.Root, from, to)
}

// StagedPaths lists paths staged against HEAD.
func (r Repo) StagedPaths() ([]string, error) {
	return StagedPaths(r.Root)
}

// StashSHA resolves a stash ref to its commit sha.
func (r Repo) StashSHA(ref string) (string, error) {
	return StashSHA(r.Root, ref)
}
