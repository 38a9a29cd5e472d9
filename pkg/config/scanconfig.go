package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument indicates scan parameters that failed validation.
// Bad intent is rejected outright; nothing is silently clamped.
var ErrInvalidArgument = errors.New("invalid argument")

// Validation bounds for scan parameters.
const (
	MinDepth        = 1
	MaxDepth        = 50
	MaxExcludeCount = 100
	MaxExcludeLen   = 200
	MaxExtensionLen = 20
)

// ScanConfig is the validated, immutable parameter set for one walk.
// Construct it with NewScanConfig; a zero ScanConfig matches nothing.
type ScanConfig struct {
	fileTypes       map[string]struct{}
	excludePatterns []string
	maxDepth        int
}

// NewScanConfig validates and builds a ScanConfig. Extensions are
// lowercased and stripped of a leading dot, then must be non-empty,
// alphanumeric, and at most MaxExtensionLen characters. Exclude patterns
// are bounded in count and length and must not contain "..". Depth must
// lie in [MinDepth, MaxDepth].
func NewScanConfig(types []string, excludePatterns []string, maxDepth int) (*ScanConfig, error) {
	if maxDepth < MinDepth || maxDepth > MaxDepth {
		return nil, fmt.Errorf("%w: max depth %d outside [%d, %d]", ErrInvalidArgument, maxDepth, MinDepth, MaxDepth)
	}

	if len(types) == 0 {
		return nil, fmt.Errorf("%w: at least one file type is required", ErrInvalidArgument)
	}
	fileTypes := make(map[string]struct{}, len(types))
	for _, t := range types {
		ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(t)), ".")
		if ext == "" {
			return nil, fmt.Errorf("%w: empty file type", ErrInvalidArgument)
		}
		if len(ext) > MaxExtensionLen {
			return nil, fmt.Errorf("%w: file type %q longer than %d characters", ErrInvalidArgument, t, MaxExtensionLen)
		}
		if !isAlphanumeric(ext) {
			return nil, fmt.Errorf("%w: file type %q is not alphanumeric", ErrInvalidArgument, t)
		}
		fileTypes[ext] = struct{}{}
	}

	if len(excludePatterns) > MaxExcludeCount {
		return nil, fmt.Errorf("%w: %d exclude patterns exceeds limit of %d", ErrInvalidArgument, len(excludePatterns), MaxExcludeCount)
	}
	patterns := make([]string, 0, len(excludePatterns))
	for _, p := range excludePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) > MaxExcludeLen {
			return nil, fmt.Errorf("%w: exclude pattern %q longer than %d characters", ErrInvalidArgument, p, MaxExcludeLen)
		}
		if strings.Contains(p, "..") {
			return nil, fmt.Errorf("%w: exclude pattern %q contains parent directory segment", ErrInvalidArgument, p)
		}
		patterns = append(patterns, p)
	}

	return &ScanConfig{
		fileTypes:       fileTypes,
		excludePatterns: patterns,
		maxDepth:        maxDepth,
	}, nil
}

// HasType reports whether the extension (without dot, any case) is in
// the configured set.
func (c *ScanConfig) HasType(ext string) bool {
	_, ok := c.fileTypes[strings.ToLower(ext)]
	return ok
}

// Types returns the configured extensions in no particular order.
func (c *ScanConfig) Types() []string {
	out := make([]string, 0, len(c.fileTypes))
	for t := range c.fileTypes {
		out = append(out, t)
	}
	return out
}

// ExcludePatterns returns the ordered exclusion patterns.
func (c *ScanConfig) ExcludePatterns() []string {
	return c.excludePatterns
}

// MaxWalkDepth returns the configured depth bound.
func (c *ScanConfig) MaxWalkDepth() int {
	return c.maxDepth
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
