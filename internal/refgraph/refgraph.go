// Package refgraph extracts textual import/require references from a
// source corpus. The extraction is intentionally heuristic: string
// literals are matched by pattern, without resolving relative paths,
// aliases, or re-exports. It will both under- and over-approximate real
// references; over-approximation is the safe direction for a tool that
// deletes files.
package refgraph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/avernar/deadwood/internal/cache"
	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/walker"
	"github.com/avernar/deadwood/pkg/config"
)

// sourceExtensions is the fixed allowlist of extensions scanned for
// references, independent of the caller's scan types.
var sourceExtensions = []string{
	"js", "jsx", "ts", "tsx", "mjs", "cjs",
	"py", "rb", "go", "java", "php", "vue", "svelte",
}

// corpusExcludes keeps build output and VCS metadata out of the corpus.
var corpusExcludes = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	"coverage",
	"vendor",
	"__pycache__",
	config.BackupDirName,
}

// referencePatterns match string literals appearing as the argument of
// import/require-like expressions across the supported languages. Each
// pattern captures the referenced name in group 1.
var referencePatterns = []*regexp.Regexp{
	// ES imports: import x from 'm', import {a, b} from 'm', import * as x from 'm'
	regexp.MustCompile(`import\s+[\w$*{},\s]*?from\s+['"]([^'"]+)['"]`),
	// Side-effect and dynamic imports: import 'm', import('m')
	regexp.MustCompile(`import\s*\(?\s*['"]([^'"]+)['"]\s*\)?`),
	// Re-exports: export {a} from 'm', export * from 'm'
	regexp.MustCompile(`export\s+[\w$*{},\s]*?from\s+['"]([^'"]+)['"]`),
	// CommonJS and Ruby: require('m'), require 'm', require_relative 'm'
	regexp.MustCompile(`require(?:_relative)?\s*\(?\s*['"]([^'"]+)['"]`),
	// PHP: include/include_once/require_once 'm'
	regexp.MustCompile(`(?:include|require)(?:_once)?\s*\(?\s*['"]([^'"]+)['"]`),
	// Python: from m import ..., import m
	regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import\b`),
	regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)\s*$`),
	// Go import blocks: lines holding nothing but an optionally aliased
	// quoted path.
	regexp.MustCompile(`(?m)^\s*(?:[\w.]+\s+)?"([^"]+)"\s*$`),
}

// Builder walks a tree and produces the ReferenceSet for it.
type Builder struct {
	walker *walker.Walker
	cache  *cache.Cache
	log    logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCache enables content-hash-validated caching of per-file
// extraction results.
func WithCache(c *cache.Cache) Option {
	return func(b *Builder) {
		b.cache = c
	}
}

// NewBuilder creates a reference-graph builder.
func NewBuilder(log logging.Logger, opts ...Option) *Builder {
	log = logging.OrNop(log)
	b := &Builder{
		walker: walker.New(log),
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scans every source file under root and returns the set of
// referenced names. Unreadable files are logged and skipped.
func (b *Builder) Build(root string) (*ReferenceSet, error) {
	cfg, err := config.NewScanConfig(sourceExtensions, corpusExcludes, config.MaxDepth)
	if err != nil {
		return nil, err
	}

	files, err := b.walker.Walk(root, cfg)
	if err != nil {
		return nil, err
	}

	set := NewReferenceSet()
	for _, f := range files {
		refs, err := b.fileReferences(f.AbsolutePath)
		if err != nil {
			b.log.Warn("cannot read source file", "path", f.RelPath, "error", err)
			continue
		}
		for _, r := range refs {
			set.Add(r)
		}

		// A referencing file's own basename (with and without extension)
		// counts as referenced too, a defensive convenience for
		// self-reference naming schemes. Files without any imports do
		// not add their name, otherwise nothing could ever be a zombie.
		if len(refs) > 0 {
			base := filepath.Base(f.RelPath)
			set.Add(base)
			set.Add(strings.TrimSuffix(base, filepath.Ext(base)))
		}
	}

	b.log.Debug("reference set built", "files", len(files), "references", set.Len())
	return set, nil
}

// fileReferences returns the references extracted from one file, served
// from the cache when the content hash still matches.
func (b *Builder) fileReferences(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		hash := cache.HashBytes(data)
		if raw, ok := b.cache.Get(path, hash); ok {
			var refs []string
			if err := json.Unmarshal(raw, &refs); err == nil {
				return refs, nil
			}
		}
		refs := ExtractReferences(string(data))
		if raw, err := json.Marshal(refs); err == nil {
			if err := b.cache.Set(path, hash, raw); err != nil {
				b.log.Debug("cache write failed", "path", path, "error", err)
			}
		}
		return refs, nil
	}

	return ExtractReferences(string(data)), nil
}

// ExtractReferences pulls every import/require-like string literal out
// of content, verbatim and deduplicated.
func ExtractReferences(content string) []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, pattern := range referencePatterns {
		for _, m := range pattern.FindAllStringSubmatch(content, -1) {
			ref := m[1]
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}
