package models

import "time"

// FileRecord describes a single file discovered during a tree walk.
// Records are created by the walker and never mutated afterwards.
type FileRecord struct {
	AbsolutePath string    `json:"absolute_path"`
	RelPath      string    `json:"rel_path"`
	SizeBytes    int64     `json:"size_bytes"`
	Modified     time.Time `json:"modified"`
}
