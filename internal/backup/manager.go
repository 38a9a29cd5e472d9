// Package backup snapshots files before deletion and replays snapshots
// back into place. The manager exclusively owns backup directory
// creation; the restorer only reads.
package backup

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/avernar/deadwood/internal/cache"
	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/safety"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/avernar/deadwood/pkg/models"
)

var (
	// ErrInvalidBackupID indicates an id that is not 32 lowercase hex
	// characters. Checked before any filesystem access, since the id is
	// used to build a directory path.
	ErrInvalidBackupID = errors.New("invalid backup id")

	// ErrBackupNotFound indicates a well-formed id with no usable backup
	// behind it (missing directory or unreadable metadata).
	ErrBackupNotFound = errors.New("backup not found")
)

// metadataFile sits next to the backed-up tree inside each backup dir.
const metadataFile = "metadata.json"

var idPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// Manager creates and lists backup snapshots under
// <root>/.dead-code-backups/<id>/.
type Manager struct {
	validator  *safety.Validator
	log        logging.Logger
	verify     bool
	onProgress func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithoutVerification disables the post-copy content hash comparison.
func WithoutVerification() ManagerOption {
	return func(m *Manager) {
		m.verify = false
	}
}

// WithProgress installs a per-file progress callback.
func WithProgress(fn func()) ManagerOption {
	return func(m *Manager) {
		m.onProgress = fn
	}
}

// NewManager creates a backup manager.
func NewManager(log logging.Logger, opts ...ManagerOption) *Manager {
	log = logging.OrNop(log)
	m := &Manager{
		validator: safety.New(log),
		log:       log,
		verify:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create snapshots files (paths relative to root, or absolute paths
// under root) into a fresh backup directory. Per-file failures are
// logged, recorded in the result's Skipped list, and left out of the
// metadata; the metadata's TotalCount counts successes only. The
// metadata file is written last, so its presence implies every listed
// file was copied.
func (m *Manager) Create(root string, files []string) (*models.BackupResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("cannot generate backup id: %w", err)
	}

	dir := filepath.Join(absRoot, config.BackupDirName, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create backup directory: %w", err)
	}

	result := &models.BackupResult{Dir: dir}
	copied := make([]string, 0, len(files))

	for _, f := range files {
		rel, err := m.relativize(absRoot, f)
		if err == nil {
			err = m.validator.Validate(rel, absRoot)
		}
		if err == nil {
			err = m.copyIntoBackup(absRoot, dir, rel)
		}
		if err != nil {
			m.log.Warn("file not backed up", "path", f, "error", err)
			result.Skipped = append(result.Skipped, models.SkippedFile{Path: f, Reason: err.Error()})
			continue
		}

		copied = append(copied, filepath.ToSlash(rel))
		if m.onProgress != nil {
			m.onProgress()
		}
	}

	result.Metadata = models.BackupMetadata{
		ID:         id,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Files:      copied,
		TotalCount: len(copied),
	}

	raw, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), raw, 0o644); err != nil {
		return nil, fmt.Errorf("cannot write backup metadata: %w", err)
	}

	m.log.Info("backup created", "id", id, "files", len(copied), "skipped", len(result.Skipped))
	return result, nil
}

// List returns the metadata of every valid backup under root, newest
// first. Directories without readable metadata are silently skipped:
// a missing metadata file means the backup never completed.
func (m *Manager) List(root string) ([]models.BackupMetadata, error) {
	backupRoot := filepath.Join(root, config.BackupDirName)
	entries, err := os.ReadDir(backupRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []models.BackupMetadata
	for _, entry := range entries {
		if !entry.IsDir() || !idPattern.MatchString(entry.Name()) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(backupRoot, entry.Name(), metadataFile))
		if err != nil {
			continue
		}
		var meta models.BackupMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		out = append(out, meta)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, errI := time.Parse(time.RFC3339, out[i].Timestamp)
		tj, errJ := time.Parse(time.RFC3339, out[j].Timestamp)
		if errI != nil || errJ != nil {
			return out[i].Timestamp > out[j].Timestamp
		}
		return ti.After(tj)
	})
	return out, nil
}

// relativize converts f into a root-relative path.
func (m *Manager) relativize(root, f string) (string, error) {
	if !filepath.IsAbs(f) {
		return filepath.FromSlash(f), nil
	}
	return filepath.Rel(root, f)
}

// copyIntoBackup mirrors one file into the backup directory and, unless
// disabled, verifies the copy by content hash.
func (m *Manager) copyIntoBackup(root, dir, rel string) error {
	src := filepath.Join(root, rel)
	dst := filepath.Join(dir, rel)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}

	if m.verify {
		srcHash, err := cache.HashFile(src)
		if err != nil {
			return err
		}
		dstHash, err := cache.HashFile(dst)
		if err != nil {
			return err
		}
		if srcHash != dstHash {
			os.Remove(dst)
			return fmt.Errorf("copy verification failed for %s", rel)
		}
	}
	return nil
}

// copyFile copies src to dst byte for byte, preserving the source mode.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// newID returns 128 bits of cryptographically strong randomness as 32
// lowercase hex characters. Wide enough that collisions are negligible;
// there is no retry-on-collision.
func newID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
