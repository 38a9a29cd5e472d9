package walker

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher wraps the gitignore matchers read from a tree.
type ignoreMatcher struct {
	matcher gitignore.Matcher
}

// loadIgnoreMatcher recursively reads .gitignore files under root.
// Returns nil when there are none or they cannot be read; gitignore
// support is an optional extra on top of the configured excludes.
func loadIgnoreMatcher(root string) *ignoreMatcher {
	fs := osfs.New(root)
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil || len(patterns) == 0 {
		return nil
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}
}

// Match reports whether the root-relative path is gitignored.
func (m *ignoreMatcher) Match(rel string, isDir bool) bool {
	parts := strings.Split(rel, string(filepath.Separator))
	return m.matcher.Match(parts, isDir)
}
