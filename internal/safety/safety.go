// Package safety validates filesystem paths derived from scanned input.
// Every component that reads or writes a path built from scan results
// runs it through Validator first; nothing bypasses this check.
package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avernar/deadwood/internal/logging"
)

var (
	// ErrPathTraversal indicates a candidate path that escapes, or could
	// escape, the base directory.
	ErrPathTraversal = errors.New("path escapes base directory")

	// ErrCrossDevice indicates a candidate that resolves onto a different
	// storage device than the base, which a prefix compare would miss
	// (symlink or bind-mount escape).
	ErrCrossDevice = errors.New("path resolves to a different device")
)

// ValidationError wraps a rejected candidate path with its reason.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return "unsafe path " + e.Path + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator checks that candidate paths stay inside a base directory.
// It is pure aside from the stat calls needed for device comparison.
type Validator struct {
	log logging.Logger
}

// New creates a path validator.
func New(log logging.Logger) *Validator {
	return &Validator{log: logging.OrNop(log)}
}

// Validate checks that candidate, taken relative to baseDir, cannot
// escape it. The candidate is rejected outright if it contains a NUL
// byte, a ".." segment, or is absolute (including Windows drive paths):
// callers are expected to pass base-relative paths only. A candidate
// that does not exist yet is fine; only path algebra and device
// mismatches are fatal.
func (v *Validator) Validate(candidate, baseDir string) error {
	if strings.ContainsRune(candidate, 0) {
		return &ValidationError{Path: candidate, Err: fmt.Errorf("%w: embedded NUL byte", ErrPathTraversal)}
	}
	if strings.Contains(candidate, "..") {
		return &ValidationError{Path: candidate, Err: fmt.Errorf("%w: parent directory segment", ErrPathTraversal)}
	}
	if filepath.IsAbs(candidate) || isWindowsDrivePath(candidate) {
		return &ValidationError{Path: candidate, Err: fmt.Errorf("%w: absolute path", ErrPathTraversal)}
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return &ValidationError{Path: candidate, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(absBase); err == nil {
		absBase = resolved
	}

	target := filepath.Join(absBase, candidate)
	targetExists := true
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		// Not-yet-created targets are allowed; validate the nominal path.
		resolved = filepath.Clean(target)
		targetExists = false
	}

	rel, err := filepath.Rel(absBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &ValidationError{Path: candidate, Err: ErrPathTraversal}
	}

	if targetExists {
		if err := v.checkDevice(resolved, absBase); err != nil {
			return &ValidationError{Path: candidate, Err: err}
		}
	}

	return nil
}

// checkDevice compares the storage device of the target against the base
// directory. Only meaningful on platforms exposing device IDs; elsewhere
// it is a no-op.
func (v *Validator) checkDevice(target, base string) error {
	targetInfo, err := os.Stat(target)
	if err != nil {
		// Raced away between resolve and stat; absence is not an error.
		return nil
	}
	baseInfo, err := os.Stat(base)
	if err != nil {
		return nil
	}

	targetDev, ok1 := deviceID(targetInfo)
	baseDev, ok2 := deviceID(baseInfo)
	if ok1 && ok2 && targetDev != baseDev {
		v.log.Warn("cross-device path rejected", "path", target, "base", base)
		return ErrCrossDevice
	}
	return nil
}

// isWindowsDrivePath reports whether the candidate looks like a Windows
// drive-qualified path (C:\ or C:/), which filepath.IsAbs does not catch
// on non-Windows hosts.
func isWindowsDrivePath(p string) bool {
	if len(p) < 2 {
		return false
	}
	c := p[0]
	isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return isLetter && p[1] == ':'
}
