// Package vcs drives the external git binary through a fixed, narrow
// command vocabulary. Each operation is a single subprocess invocation and
// returns its captured transcript so callers can surface it as an audit
// trail. Merge, diff and history traversal are out of scope.
package vcs

import (
	"context"
	"time"

	"nymedit/internal/proc"
)

// Git issues version-control commands against local working copies.
type Git struct {
	runner  proc.Runner
	timeout time.Duration
}

// New creates a Git driver. timeout bounds every mutating command.
func New(runner proc.Runner, timeout time.Duration) *Git {
	return &Git{runner: runner, timeout: timeout}
}

func (g *Git) git(ctx context.Context, repoDir string, args ...string) (string, error) {
	argv := append([]string{"git"}, args...)
	return g.runner.Run(ctx, repoDir, argv, g.timeout)
}

// Clone clones remoteURL into parentDir/target.
func (g *Git) Clone(ctx context.Context, parentDir, remoteURL, target string) (string, error) {
	return g.git(ctx, parentDir, "clone", remoteURL, target)
}

// Config sets a repository-local configuration value.
func (g *Git) Config(ctx context.Context, repoDir, key, value string) (string, error) {
	return g.git(ctx, repoDir, "config", key, value)
}

// ConfigUser sets the commit identity for a working copy.
func (g *Git) ConfigUser(ctx context.Context, repoDir, name, email string) ([]string, error) {
	nameOut, err := g.Config(ctx, repoDir, "user.name", name)
	if err != nil {
		return []string{nameOut}, err
	}
	emailOut, err := g.Config(ctx, repoDir, "user.email", email)
	return []string{nameOut, emailOut}, err
}

// CreateBranch creates and checks out a new branch.
func (g *Git) CreateBranch(ctx context.Context, repoDir, branch string) (string, error) {
	return g.git(ctx, repoDir, "checkout", "-b", branch)
}

// CheckoutBranch checks out an existing branch.
func (g *Git) CheckoutBranch(ctx context.Context, repoDir, branch string) (string, error) {
	return g.git(ctx, repoDir, "checkout", branch)
}

// Add stages a path.
func (g *Git) Add(ctx context.Context, repoDir, path string) (string, error) {
	return g.git(ctx, repoDir, "add", path)
}

// Commit commits a single path with an explicit author.
func (g *Git) Commit(ctx context.Context, repoDir, author, message, path string) (string, error) {
	return g.git(ctx, repoDir, "commit", "--author", author, "-m", message, path)
}

// Pull pulls refspec from the named remote.
func (g *Git) Pull(ctx context.Context, repoDir, remote, refspec string) (string, error) {
	return g.git(ctx, repoDir, "pull", remote, refspec)
}

// Push pushes refspec to the named remote.
func (g *Git) Push(ctx context.Context, repoDir, remote, refspec string) (string, error) {
	return g.git(ctx, repoDir, "push", remote, refspec)
}
