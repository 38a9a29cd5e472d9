package main

import (
	"fmt"

	"github.com/avernar/deadwood/internal/backup"
	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/output"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/urfave/cli/v2"
)

func runListBackups(c *cli.Context, cfg *config.Config, log logging.Logger) error {
	backups, err := backup.NewManager(log).List(rootArg(c))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(backups)
	}

	if len(backups) == 0 {
		formatter.Info("No backups found")
		return nil
	}

	rows := make([][]string, len(backups))
	for i, b := range backups {
		rows[i] = []string{b.ID, b.Timestamp, fmt.Sprintf("%d", b.TotalCount)}
	}
	return formatter.Output(output.NewTable("Backups", []string{"ID", "Created", "Files"}, rows, backups))
}

func runRestore(c *cli.Context, cfg *config.Config, log logging.Logger) error {
	id := c.String("restore")
	result, err := backup.NewRestorer(log).Restore(rootArg(c), id)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON {
		return formatter.Output(result)
	}

	formatter.Success("Restored %d files from backup %s", result.Restored, result.ID)
	for _, s := range result.Skipped {
		formatter.Warning("skipped %s: %s", s.Path, s.Reason)
	}
	return nil
}
