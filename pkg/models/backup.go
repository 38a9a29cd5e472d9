package models

// BackupMetadata is the on-disk description of one backup snapshot.
// The JSON field names are a compatibility contract: metadata.json files
// written by earlier versions of the tool must remain readable, so the
// shape is exactly {id, timestamp, files, totalCount}.
type BackupMetadata struct {
	ID         string   `json:"id"`
	Timestamp  string   `json:"timestamp"`
	Files      []string `json:"files"`
	TotalCount int      `json:"totalCount"`
}

// SkippedFile records a single file that failed during a batch operation.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// BackupResult carries the metadata of a created backup plus every file
// that could not be copied. Partial backups are allowed: Metadata.Files
// and TotalCount reflect only what actually succeeded. Callers that need
// an all-or-nothing guarantee compare TotalCount against their input.
type BackupResult struct {
	Metadata BackupMetadata `json:"metadata"`
	Dir      string         `json:"dir"`
	Skipped  []SkippedFile  `json:"skipped,omitempty"`
}

// RestoreResult reports how much of a backup was replayed. Restored may
// be less than the backup's TotalCount when individual files fail.
type RestoreResult struct {
	ID       string        `json:"id"`
	Restored int           `json:"restored"`
	Skipped  []SkippedFile `json:"skipped,omitempty"`
}
