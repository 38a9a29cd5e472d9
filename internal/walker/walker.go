// Package walker enumerates files under a root, bounded by depth,
// exclusion patterns, a size ceiling, and symlink-cycle protection.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/safety"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/avernar/deadwood/pkg/models"
)

// DefaultMaxFileSize is the ceiling above which files are skipped with a
// warning instead of being recorded, to bound downstream memory and time.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Walker performs a bounded, best-effort, depth-first tree walk. The
// walk is synchronous and single-threaded; per-entry failures are logged
// and skipped, never fatal to the walk as a whole.
type Walker struct {
	validator   *safety.Validator
	log         logging.Logger
	maxFileSize int64
	gitignore   bool
	onFile      func(path string)
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxFileSize overrides the file-size ceiling.
func WithMaxFileSize(n int64) Option {
	return func(w *Walker) {
		w.maxFileSize = n
	}
}

// WithGitignore additionally honors .gitignore files found in the tree.
func WithGitignore() Option {
	return func(w *Walker) {
		w.gitignore = true
	}
}

// WithOnFile installs a callback invoked for every file recorded, used
// for progress reporting.
func WithOnFile(fn func(path string)) Option {
	return func(w *Walker) {
		w.onFile = fn
	}
}

// New creates a walker.
func New(log logging.Logger, opts ...Option) *Walker {
	log = logging.OrNop(log)
	w := &Walker{
		validator:   safety.New(log),
		log:         log,
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// walkState carries the per-walk bookkeeping shared across recursion.
type walkState struct {
	root    string
	cfg     *config.ScanConfig
	visited map[string]struct{}
	seen    map[string]struct{}
	ignores *ignoreMatcher
	files   []models.FileRecord
}

// Walk enumerates files under root that match cfg. Every entry's
// root-relative path is safety-validated against the walk root, not the
// process working directory, so a root anywhere on the filesystem
// behaves the same as ".". The result contains no duplicate paths;
// ordering is not significant to callers.
func (w *Walker) Walk(root string, cfg *config.ScanConfig) ([]models.FileRecord, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	canonRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	st := &walkState{
		root:    canonRoot,
		cfg:     cfg,
		visited: map[string]struct{}{canonRoot: {}},
		seen:    make(map[string]struct{}),
	}
	if w.gitignore {
		st.ignores = loadIgnoreMatcher(canonRoot)
	}

	w.walkDir(st, canonRoot, 0)
	return st.files, nil
}

// walkDir reads one directory level. depth is the directory's distance
// from the root; children at depth cfg.MaxWalkDepth() are the last ones
// descended into.
func (w *Walker) walkDir(st *walkState, dir string, depth int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.classifyAndLog(dir, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(st.root, path)
		if err != nil {
			w.log.Error("cannot relativize path", "path", path, "error", err)
			continue
		}

		// Safety chokepoint: every entry is validated before any read
		// or descent. A rejected entry is skipped, not fatal.
		if err := w.validator.Validate(rel, st.root); err != nil {
			w.log.Warn("skipping unsafe path", "path", rel, "error", err)
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			w.classifyAndLog(path, err)
			continue
		}

		if w.isExcluded(st, entry.Name(), rel, info.IsDir()) {
			w.log.Debug("excluded", "path", rel)
			continue
		}

		if info.IsDir() {
			w.descend(st, path, rel, depth)
			continue
		}

		w.recordFile(st, path, rel, info)
	}
}

func (w *Walker) descend(st *walkState, path, rel string, depth int) {
	if depth+1 > st.cfg.MaxWalkDepth() {
		w.log.Debug("depth bound reached", "path", rel)
		return
	}

	// Cycle protection: directories are identified by canonical path so
	// a symlink back to an ancestor is seen as already visited.
	canon, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.classifyAndLog(path, err)
		return
	}
	if _, ok := st.visited[canon]; ok {
		w.log.Debug("directory already visited", "path", rel)
		return
	}
	st.visited[canon] = struct{}{}

	w.walkDir(st, path, depth+1)
}

func (w *Walker) recordFile(st *walkState, path, rel string, info os.FileInfo) {
	if info.Size() > w.maxFileSize {
		w.log.Warn("file exceeds size ceiling, skipping", "path", rel, "size", info.Size())
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !st.cfg.HasType(ext) {
		return
	}

	if _, ok := st.seen[path]; ok {
		return
	}
	st.seen[path] = struct{}{}

	st.files = append(st.files, models.FileRecord{
		AbsolutePath: path,
		RelPath:      rel,
		SizeBytes:    info.Size(),
		Modified:     info.ModTime(),
	})
	if w.onFile != nil {
		w.onFile(rel)
	}
}

// isExcluded applies the exclusion rules: an entry is excluded when its
// name or full relative path contains a pattern, or, for patterns
// starting with "*", when the name ends with or contains the pattern's
// suffix. Checked before descending so excluded directories are never
// entered.
func (w *Walker) isExcluded(st *walkState, name, rel string, isDir bool) bool {
	for _, pattern := range st.cfg.ExcludePatterns() {
		if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
			if strings.HasSuffix(name, suffix) || strings.Contains(name, suffix) {
				return true
			}
			continue
		}
		if strings.Contains(name, pattern) || strings.Contains(rel, pattern) {
			return true
		}
	}

	if st.ignores != nil && st.ignores.Match(rel, isDir) {
		return true
	}
	return false
}

// classifyAndLog applies the per-entry failure policy: permission
// problems are warnings, vanished entries are benign races, anything
// else is an error. The walk always continues.
func (w *Walker) classifyAndLog(path string, err error) {
	switch {
	case os.IsPermission(err):
		w.log.Warn("permission denied", "path", path)
	case os.IsNotExist(err):
		w.log.Debug("entry vanished during walk", "path", path)
	default:
		w.log.Error("cannot read entry", "path", path, "error", err)
	}
}
