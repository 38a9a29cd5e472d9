// Package detector cross-references discovered files against the
// reference set and classifies the unreferenced ones as zombies.
package detector

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/refgraph"
	"github.com/avernar/deadwood/pkg/models"
)

// Detector classifies candidate files as referenced or zombie.
type Detector struct {
	log logging.Logger
}

// New creates a detector.
func New(log logging.Logger) *Detector {
	return &Detector{log: logging.OrNop(log)}
}

// Detect returns the candidates with no reference in refs. A candidate
// with relative path p, basename b, and extensionless basename s is kept
// when the set contains p, ./p, b, ./b, s, or ./s, or when any reference
// contains s as a substring. The substring fallback deliberately
// under-reports zombies: for a tool that deletes files, a missed zombie
// is cheaper than a deleted live file.
func (d *Detector) Detect(files []models.FileRecord, refs *refgraph.ReferenceSet) []models.ZombieFile {
	var zombies []models.ZombieFile
	for _, f := range files {
		rel := filepath.ToSlash(f.RelPath)
		if d.isReferenced(rel, refs) {
			continue
		}
		zombies = append(zombies, d.record(f, rel))
	}
	return zombies
}

func (d *Detector) isReferenced(rel string, refs *refgraph.ReferenceSet) bool {
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))

	for _, candidate := range []string{rel, base, stem} {
		if refs.Contains(candidate) || refs.Contains("./"+candidate) {
			return true
		}
	}
	return refs.ContainsSubstring(stem)
}

// record builds the zombie entry from the metadata captured at walk
// time. A record without a modification time falls back to a stat;
// when that fails too the file is still reported, with size 0 and an
// unknown modification time.
func (d *Detector) record(f models.FileRecord, rel string) models.ZombieFile {
	z := models.ZombieFile{Path: rel, SizeBytes: f.SizeBytes}

	if !f.Modified.IsZero() {
		z.Modified = f.Modified.UTC().Format(time.RFC3339)
		return z
	}

	info, err := os.Stat(f.AbsolutePath)
	if err != nil {
		d.log.Debug("cannot stat zombie candidate", "path", rel, "error", err)
		z.SizeBytes = 0
		z.Modified = "unknown"
		return z
	}

	z.SizeBytes = info.Size()
	z.Modified = info.ModTime().UTC().Format(time.RFC3339)
	return z
}
