package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scanCfg(t *testing.T, types []string, exclude []string, depth int) *config.ScanConfig {
	t.Helper()
	cfg, err := config.NewScanConfig(types, exclude, depth)
	require.NoError(t, err)
	return cfg
}

func walkRels(t *testing.T, w *Walker, root string, cfg *config.ScanConfig) []string {
	t.Helper()
	files, err := w.Walk(root, cfg)
	require.NoError(t, err)
	rels := make([]string, len(files))
	for i, f := range files {
		rels[i] = filepath.ToSlash(f.RelPath)
	}
	return rels
}

func TestWalkDepthBound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.js"), "")
	writeFile(t, filepath.Join(root, "level1", "one.js"), "")
	writeFile(t, filepath.Join(root, "level1", "level2", "two.js"), "")
	writeFile(t, filepath.Join(root, "level1", "level2", "level3", "three.js"), "")

	w := New(logging.Nop())
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, nil, 2))

	assert.ElementsMatch(t, []string{"top.js", "level1/one.js", "level1/level2/two.js"}, rels)
}

func TestWalkExcludesDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.js"), "")
	writeFile(t, filepath.Join(root, "node_modules", "lib.js"), "")
	writeFile(t, filepath.Join(root, "src", "node_modules", "nested.js"), "")

	w := New(logging.Nop())
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, []string{"node_modules"}, 10))

	assert.ElementsMatch(t, []string{"src/app.js"}, rels)
}

func TestWalkStarPatternMatchesSuffix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "app.min.js"), "")

	w := New(logging.Nop())
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, []string{"*.min.js"}, 5))

	assert.ElementsMatch(t, []string{"app.js"}, rels)
}

func TestWalkExtensionFilterCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.JS"), "")
	writeFile(t, filepath.Join(root, "b.js"), "")
	writeFile(t, filepath.Join(root, "c.txt"), "")

	w := New(logging.Nop())
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, nil, 5))

	assert.ElementsMatch(t, []string{"a.JS", "b.js"}, rels)
}

func TestWalkSizeCeiling(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.js"), "ok")
	writeFile(t, filepath.Join(root, "big.js"), "this one is too large")

	w := New(logging.Nop(), WithMaxFileSize(10))
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, nil, 5))

	assert.ElementsMatch(t, []string{"small.js"}, rels)
}

func TestWalkTerminatesOnSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevation on windows")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "file.js"), "")
	// a/loop points back at the root: without canonical-path cycle
	// detection this walk would never finish.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))

	w := New(logging.Nop())
	rels := walkRels(t, w, root, scanCfg(t, []string{"js"}, nil, 10))

	assert.ElementsMatch(t, []string{"a/file.js"}, rels)
}

func TestWalkMissingRoot(t *testing.T) {
	w := New(logging.Nop())
	_, err := w.Walk(filepath.Join(t.TempDir(), "missing"), scanCfg(t, []string{"js"}, nil, 5))
	assert.Error(t, err)
}

func TestWalkOnFileCallback(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.js"), "")
	writeFile(t, filepath.Join(root, "b.js"), "")

	var seen []string
	w := New(logging.Nop(), WithOnFile(func(p string) { seen = append(seen, p) }))
	walkRels(t, w, root, scanCfg(t, []string{"js"}, nil, 5))

	assert.Len(t, seen, 2)
}
