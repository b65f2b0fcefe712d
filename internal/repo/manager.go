// Package repo manages per-user working copies of the shared record
// repository: cloning on first login, resynchronizing on later logins,
// committing newly built records, and publishing on logout.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nymedit/internal/proc"
	"nymedit/internal/record"
	"nymedit/internal/vcs"
)

// Identity is the commit authorship for one contributor.
type Identity struct {
	Realname string
	Email    string
}

// Options configures a Manager.
type Options struct {
	// UsersDir holds one working copy per contributor, named by username.
	UsersDir string

	// RemoteURL is the shared repository all working copies clone from.
	RemoteURL string

	// Identities maps usernames to commit authorship.
	Identities map[string]Identity

	// ConceptDir and BibDir are the in-repo base directories scanned by the
	// lookup operations.
	ConceptDir string
	BibDir     string

	// QueryTimeout bounds read-only lookup commands.
	QueryTimeout time.Duration
}

// Manager owns the lifecycle of per-user working copies. Working copies are
// exclusively owned by their user: at most one active session per username
// is assumed, and no filesystem locking is performed here. Operations on
// different users' copies are fully independent.
type Manager struct {
	git    *vcs.Git
	runner proc.Runner
	opts   Options
	logger record.Logger
}

// NewManager creates a Manager with the provided dependencies.
func NewManager(git *vcs.Git, runner proc.Runner, opts Options, logger record.Logger) *Manager {
	return &Manager{git: git, runner: runner, opts: opts, logger: logger}
}

// RepoDir returns the working copy path for a username.
func (m *Manager) RepoDir(username string) string {
	return filepath.Join(m.opts.UsersDir, username)
}

func (m *Manager) identity(username string) (Identity, error) {
	id, ok := m.opts.Identities[username]
	if !ok {
		return Identity{}, fmt.Errorf("no identity configured for user %q", username)
	}
	return id, nil
}

// EnsureCurrent prepares the user's working copy for a session.
//
// If no working copy exists yet, it clones the shared repository, sets the
// commit identity and push.default=simple, creates the user's branch and
// pushes it upstream immediately so later pulls from it succeed. If a copy
// exists, it checks out the user's branch and pulls first from the user's
// own remote branch, then from the shared mainline.
//
// Any failure aborts the sequence; the steps are safe to repeat on the next
// login, so there is no partial retry here.
func (m *Manager) EnsureCurrent(ctx context.Context, username string) ([]string, error) {
	repoDir := m.RepoDir(username)
	var transcripts []string

	run := func(out string, err error) error {
		transcripts = append(transcripts, out)
		return err
	}

	info, statErr := os.Stat(repoDir)
	exists := statErr == nil && info.IsDir()

	if !exists {
		if err := run(m.git.Clone(ctx, m.opts.UsersDir, m.opts.RemoteURL, username)); err != nil {
			return transcripts, fmt.Errorf("cloning repository: %w", err)
		}
		id, err := m.identity(username)
		if err != nil {
			return transcripts, err
		}
		idOut, err := m.git.ConfigUser(ctx, repoDir, id.Realname, id.Email)
		transcripts = append(transcripts, idOut...)
		if err != nil {
			return transcripts, fmt.Errorf("setting commit identity: %w", err)
		}
		if err := run(m.git.Config(ctx, repoDir, "push.default", "simple")); err != nil {
			return transcripts, fmt.Errorf("configuring push.default: %w", err)
		}
		if err := run(m.git.CreateBranch(ctx, repoDir, username)); err != nil {
			return transcripts, fmt.Errorf("creating branch: %w", err)
		}
		if err := run(m.git.Push(ctx, repoDir, "origin", username+":"+username)); err != nil {
			return transcripts, fmt.Errorf("pushing new branch: %w", err)
		}
		m.logger.Info("working copy created", "user", username)
		return transcripts, nil
	}

	if err := run(m.git.CheckoutBranch(ctx, repoDir, username)); err != nil {
		return transcripts, fmt.Errorf("checking out branch: %w", err)
	}
	if err := run(m.git.Pull(ctx, repoDir, "origin", username)); err != nil {
		return transcripts, fmt.Errorf("pulling user branch: %w", err)
	}
	if err := run(m.git.Pull(ctx, repoDir, "origin", "master")); err != nil {
		return transcripts, fmt.Errorf("pulling mainline: %w", err)
	}
	m.logger.Info("working copy synchronized", "user", username)
	return transcripts, nil
}

// CommitRecord writes content at relPath inside the user's working copy and
// commits it. Existing paths are never clobbered: the check happens before
// any write and before any git command. The file is written to a temporary
// name and renamed into place so a crash mid-write cannot leave a truncated
// file for the stage step to pick up.
func (m *Manager) CommitRecord(ctx context.Context, username, relPath string, content []byte) ([]string, error) {
	repoDir := m.RepoDir(username)
	fullPath := filepath.Join(repoDir, filepath.FromSlash(relPath))

	if _, err := os.Stat(fullPath); err == nil {
		return nil, &record.AlreadyExistsError{Path: relPath}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking record path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}
	tmpPath := fullPath + ".tmp-" + uuid.New().String()
	if err := os.WriteFile(tmpPath, content, 0644); err != nil {
		return nil, fmt.Errorf("writing record: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("placing record: %w", err)
	}

	var transcripts []string
	addOut, err := m.git.Add(ctx, repoDir, relPath)
	transcripts = append(transcripts, addOut)
	if err != nil {
		return transcripts, fmt.Errorf("staging record: %w", err)
	}

	id, err := m.identity(username)
	if err != nil {
		return transcripts, err
	}
	author := fmt.Sprintf("%s <%s>", id.Realname, id.Email)
	commitOut, err := m.git.Commit(ctx, repoDir, author, "Added "+relPath, relPath)
	transcripts = append(transcripts, commitOut)
	if err != nil {
		return transcripts, fmt.Errorf("committing record: %w", err)
	}

	m.logger.Info("record committed", "user", username, "path", relPath)
	return transcripts, nil
}

// Publish pushes the user's branch to its same-named upstream ref. Called on
// session end.
func (m *Manager) Publish(ctx context.Context, username string) (string, error) {
	out, err := m.git.Push(ctx, m.RepoDir(username), "origin", username+":"+username)
	if err != nil {
		return out, fmt.Errorf("pushing branch: %w", err)
	}
	m.logger.Info("branch published", "user", username)
	return out, nil
}
