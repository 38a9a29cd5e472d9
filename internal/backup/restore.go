package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/safety"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/avernar/deadwood/pkg/models"
)

// Restorer replays a backup's metadata to put files back at their
// original relative paths. It never mutates the backup itself, which
// makes restores idempotent.
type Restorer struct {
	validator *safety.Validator
	log       logging.Logger
}

// NewRestorer creates a restorer.
func NewRestorer(log logging.Logger) *Restorer {
	log = logging.OrNop(log)
	return &Restorer{
		validator: safety.New(log),
		log:       log,
	}
}

// Restore copies every file listed in the backup's metadata back under
// root, overwriting whatever is there. The id is shape-checked before
// any filesystem access. Per-file failures are logged and skipped; the
// returned count reflects what was actually restored.
func (r *Restorer) Restore(root, id string) (*models.RestoreResult, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackupID, id)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(absRoot, config.BackupDirName, id)
	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}

	var meta models.BackupMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		// Unreadable metadata means the directory is not a valid backup.
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}

	result := &models.RestoreResult{ID: id}
	for _, rel := range meta.Files {
		if err := r.restoreFile(absRoot, dir, rel); err != nil {
			r.log.Warn("file not restored", "path", rel, "error", err)
			result.Skipped = append(result.Skipped, models.SkippedFile{Path: rel, Reason: err.Error()})
			continue
		}
		result.Restored++
	}

	r.log.Info("backup restored", "id", id, "restored", result.Restored, "skipped", len(result.Skipped))
	return result, nil
}

func (r *Restorer) restoreFile(root, dir, rel string) error {
	if err := r.validator.Validate(rel, root); err != nil {
		return err
	}

	osRel := filepath.FromSlash(rel)
	src := filepath.Join(dir, osRel)
	dst := filepath.Join(root, osRel)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return copyFile(src, dst)
}
