package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// grep exit codes: 0 matches found, 1 no matches, >=2 real error. "No
// matches" is an acceptable outcome for corpus lookups.
func grepAccept(code int) bool { return code < 2 }

func (m *Manager) grep(ctx context.Context, username, pattern, dir string) ([]string, error) {
	args := []string{"grep", "-hoPr", pattern, dir}
	out, err := m.runner.RunChecked(ctx, m.RepoDir(username), args, m.opts.QueryTimeout, grepAccept)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return lines, nil
}

// BibKeys returns every citation key present in the user's working copy,
// sorted.
func (m *Manager) BibKeys(ctx context.Context, username string) ([]string, error) {
	return m.grep(ctx, username, `^\s*<key>\K[^<]+`, m.opts.BibDir)
}

// Nyms returns every concept identifier present in the user's working copy,
// sorted.
func (m *Manager) Nyms(ctx context.Context, username string) ([]string, error) {
	return m.grep(ctx, username, `^\s*<nym>\K[^<]+`, m.opts.ConceptDir)
}
