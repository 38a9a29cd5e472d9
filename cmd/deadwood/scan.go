package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avernar/deadwood/internal/backup"
	"github.com/avernar/deadwood/internal/cache"
	"github.com/avernar/deadwood/internal/detector"
	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/output"
	"github.com/avernar/deadwood/internal/progress"
	"github.com/avernar/deadwood/internal/refgraph"
	"github.com/avernar/deadwood/internal/safety"
	"github.com/avernar/deadwood/internal/walker"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/avernar/deadwood/pkg/models"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// scanOptions are the resolved parameters for one scan run.
type scanOptions struct {
	Root        string
	Types       []string
	Exclude     []string
	Depth       int
	MaxFileSize int64
	AutoRemove  bool
	DryRun      bool
	Backup      bool
	Gitignore   bool
	Cache       *cache.Cache
	Log         logging.Logger
	OnWalk      func(path string)
	OnBackup    func()
}

func runScan(c *cli.Context, cfg *config.Config, log logging.Logger) error {
	types := cfg.Scan.Types
	if c.IsSet("types") {
		types = splitCSV(c.String("types"))
	}
	exclude := cfg.Scan.Exclude
	if s := c.String("exclude"); s != "" {
		exclude = append(append([]string{}, exclude...), splitCSV(s)...)
	}
	depth := cfg.Scan.MaxDepth
	if c.IsSet("depth") {
		depth = c.Int("depth")
	}

	refCache, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled && !c.Bool("no-cache"))
	if err != nil {
		return err
	}

	spinner := progress.NewSpinner("Scanning tree...")

	opts := scanOptions{
		Root:        rootArg(c),
		Types:       types,
		Exclude:     exclude,
		Depth:       depth,
		MaxFileSize: cfg.Scan.MaxFileSize,
		AutoRemove:  c.Bool("auto-remove") && !c.Bool("report"),
		DryRun:      c.Bool("dry-run"),
		Backup:      (cfg.Backup.Enabled || c.Bool("backup")) && !c.Bool("no-backup"),
		Gitignore:   cfg.Scan.Gitignore,
		Cache:       refCache,
		Log:         log,
		OnWalk:      func(string) { spinner.Tick() },
	}

	report, err := executeScan(opts)
	spinner.FinishSuccess()
	if err != nil {
		return err
	}

	return renderReport(c, cfg, report, opts)
}

// executeScan runs the full pipeline: walk, build references, detect,
// and (when enabled) back up and delete. Destructive deletion happens
// only after the backup succeeded, and only for files the backup
// actually captured.
func executeScan(opts scanOptions) (*models.ZombieReport, error) {
	log := logging.OrNop(opts.Log)

	scanCfg, err := config.NewScanConfig(opts.Types, opts.Exclude, opts.Depth)
	if err != nil {
		return nil, err
	}

	walkOpts := []walker.Option{}
	if opts.OnWalk != nil {
		walkOpts = append(walkOpts, walker.WithOnFile(opts.OnWalk))
	}
	if opts.Gitignore {
		walkOpts = append(walkOpts, walker.WithGitignore())
	}
	if opts.MaxFileSize > 0 {
		walkOpts = append(walkOpts, walker.WithMaxFileSize(opts.MaxFileSize))
	}

	files, err := walker.New(log, walkOpts...).Walk(opts.Root, scanCfg)
	if err != nil {
		return nil, fmt.Errorf("cannot walk %s: %w", opts.Root, err)
	}

	builderOpts := []refgraph.Option{}
	if opts.Cache != nil {
		builderOpts = append(builderOpts, refgraph.WithCache(opts.Cache))
	}
	refs, err := refgraph.NewBuilder(log, builderOpts...).Build(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot build reference graph: %w", err)
	}

	zombies := detector.New(log).Detect(files, refs)
	sort.Slice(zombies, func(i, j int) bool { return zombies[i].Path < zombies[j].Path })

	report := &models.ZombieReport{
		Root:    opts.Root,
		Zombies: zombies,
		Summary: models.ScanSummary{
			FilesScanned:   len(files),
			ReferenceCount: refs.Len(),
			ZombieCount:    len(zombies),
		},
	}
	for _, z := range zombies {
		report.Summary.ZombieBytes += z.SizeBytes
		report.Findings = append(report.Findings, models.NewZombieFinding(z))
	}

	if !opts.AutoRemove || opts.DryRun || len(zombies) == 0 {
		return report, nil
	}

	toDelete := make([]string, len(zombies))
	for i, z := range zombies {
		toDelete[i] = z.Path
	}

	if opts.Backup {
		mgrOpts := []backup.ManagerOption{}
		if opts.OnBackup != nil {
			mgrOpts = append(mgrOpts, backup.WithProgress(opts.OnBackup))
		}
		res, err := backup.NewManager(log, mgrOpts...).Create(opts.Root, toDelete)
		if err != nil {
			return nil, fmt.Errorf("backup failed, nothing deleted: %w", err)
		}
		report.BackupID = res.Metadata.ID
		// Only delete what the backup actually holds.
		toDelete = res.Metadata.Files
	}

	report.Summary.RemovedCount = removeFiles(opts.Root, toDelete, log)
	return report, nil
}

// removeFiles deletes the given root-relative files, validating each
// path first. Per-file failures are logged and skipped.
func removeFiles(root string, files []string, log logging.Logger) int {
	validator := safety.New(log)
	removed := 0
	for _, rel := range files {
		if err := validator.Validate(rel, root); err != nil {
			log.Warn("refusing to delete unsafe path", "path", rel, "error", err)
			continue
		}
		if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			log.Warn("cannot delete file", "path", rel, "error", err)
			continue
		}
		log.Info("deleted zombie file", "path", rel)
		removed++
	}
	return removed
}

func renderReport(c *cli.Context, cfg *config.Config, report *models.ZombieReport, opts scanOptions) error {
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(report)
	}

	if len(report.Zombies) == 0 {
		formatter.Success("No zombie files found (%d files scanned, %d references)",
			report.Summary.FilesScanned, report.Summary.ReferenceCount)
		return nil
	}

	rows := make([][]string, len(report.Zombies))
	for i, z := range report.Zombies {
		rows[i] = []string{z.Path, humanSize(z.SizeBytes), z.Modified}
	}
	table := output.NewTable("Zombie Files", []string{"Path", "Size", "Modified"}, rows, report)
	if err := formatter.Output(table); err != nil {
		return err
	}

	fmt.Fprintf(formatter.Writer(), "Summary: %d zombie files (%s) out of %d scanned, %d references\n",
		report.Summary.ZombieCount, humanSize(report.Summary.ZombieBytes),
		report.Summary.FilesScanned, report.Summary.ReferenceCount)

	switch {
	case opts.DryRun && opts.AutoRemove:
		formatter.Warning("Dry run: nothing was deleted")
	case report.BackupID != "":
		formatter.Success("Backed up %d files as %s, deleted %d", len(report.Zombies), report.BackupID, report.Summary.RemovedCount)
		formatter.Info("Restore with: deadwood --restore %s", report.BackupID)
	case opts.AutoRemove:
		color.Red("Deleted %d files WITHOUT backup", report.Summary.RemovedCount)
	}

	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
