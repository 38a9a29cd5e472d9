package safety

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsTraversal(t *testing.T) {
	v := New(logging.Nop())
	base := t.TempDir()

	cases := []string{
		"../outside.txt",
		"sub/../../outside.txt",
		"..",
		"foo/..bar/..",
	}
	for _, candidate := range cases {
		err := v.Validate(candidate, base)
		require.Error(t, err, "candidate %q", candidate)
		assert.ErrorIs(t, err, ErrPathTraversal, "candidate %q", candidate)
	}
}

func TestValidateRejectsAbsolutePaths(t *testing.T) {
	v := New(logging.Nop())
	base := t.TempDir()

	for _, candidate := range []string{"/etc/passwd", `C:\Windows\system32`, "c:/temp"} {
		err := v.Validate(candidate, base)
		require.Error(t, err, "candidate %q", candidate)
		assert.ErrorIs(t, err, ErrPathTraversal, "candidate %q", candidate)
	}
}

func TestValidateRejectsNulByte(t *testing.T) {
	v := New(logging.Nop())
	err := v.Validate("file\x00.txt", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestValidateAcceptsPathsInsideBase(t *testing.T) {
	v := New(logging.Nop())
	base := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(base, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "sub", "deep", "file.js"), []byte("x"), 0o644))

	assert.NoError(t, v.Validate("sub", base))
	assert.NoError(t, v.Validate(filepath.Join("sub", "deep", "file.js"), base))
}

func TestValidateAllowsNotYetCreatedPaths(t *testing.T) {
	v := New(logging.Nop())
	base := t.TempDir()

	assert.NoError(t, v.Validate(filepath.Join("brand", "new", "file.txt"), base))
}

func TestValidateRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevation on windows")
	}
	v := New(logging.Nop())
	base := t.TempDir()
	outside := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(base, "link")))

	err := v.Validate(filepath.Join("link", "secret.txt"), base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestValidationErrorUnwraps(t *testing.T) {
	err := &ValidationError{Path: "x", Err: ErrCrossDevice}
	assert.ErrorIs(t, err, ErrCrossDevice)
	assert.Contains(t, err.Error(), "x")
}
