package models

// Finding types emitted during a scan.
const (
	FindingZombieFile = "zombie-file"
)

// Finding is a single observation produced during a scan pass.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Type    string `json:"type"`
	Match   string `json:"match,omitempty"`
	Message string `json:"message"`
}

// ZombieFile is a discovered file that no textual reference points to.
// Modified is best-effort: "unknown" when the file could not be stat'ed.
type ZombieFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Modified  string `json:"modified"`
}

// ScanSummary aggregates the outcome of one zombie-detection run.
type ScanSummary struct {
	FilesScanned   int   `json:"files_scanned"`
	ReferenceCount int   `json:"reference_count"`
	ZombieCount    int   `json:"zombie_count"`
	ZombieBytes    int64 `json:"zombie_bytes"`
	RemovedCount   int   `json:"removed_count,omitempty"`
}

// ZombieReport is the full result of a scan: every zombie plus findings
// and aggregate numbers, in the shape the formatters serialize.
type ZombieReport struct {
	Root     string       `json:"root"`
	Zombies  []ZombieFile `json:"zombies"`
	Findings []Finding    `json:"findings"`
	Summary  ScanSummary  `json:"summary"`
	BackupID string       `json:"backup_id,omitempty"`
}

// NewZombieFinding converts a zombie file into its report finding.
func NewZombieFinding(z ZombieFile) Finding {
	return Finding{
		File:    z.Path,
		Type:    FindingZombieFile,
		Message: "no reference to this file was found in the scanned sources",
	}
}
