package main

import (
	"os"

	"github.com/avernar/deadwood/internal/logging"
	"github.com/avernar/deadwood/internal/output"
	"github.com/avernar/deadwood/pkg/config"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:      "deadwood",
		Usage:     "Find and safely remove unreferenced source files",
		Version:   version,
		ArgsUsage: "[path]",
		Description: `Deadwood scans a source tree for files nothing references ("zombie"
files) and offers a reversible deletion workflow: every removal is
preceded by a backup snapshot that can be restored by id.

Reference detection is textual and heuristic, not a static analyzer:
it extracts import/require string literals and errs on the side of
keeping files.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "types",
				Value: "js,jsx,ts,tsx,mjs,cjs",
				Usage: "Comma-separated file extensions to scan",
			},
			&cli.StringFlag{
				Name:  "exclude",
				Usage: "Comma-separated exclusion patterns (added to defaults)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Value: 10,
				Usage: "Maximum directory depth (1-50)",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Scan and print findings without mutating anything",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Suppress all destructive actions regardless of other flags",
			},
			&cli.BoolFlag{
				Name:  "auto-remove",
				Usage: "Delete detected zombie files",
			},
			&cli.BoolFlag{
				Name:  "backup",
				Usage: "Snapshot files before deletion (default)",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "Skip the backup snapshot before deletion",
			},
			&cli.BoolFlag{
				Name:  "list-backups",
				Usage: "List existing backup snapshots and exit",
			},
			&cli.StringFlag{
				Name:  "restore",
				Usage: "Restore the backup with the given id and exit",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"DEADWOOD_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the reference-extraction cache",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := logging.New(c.Bool("verbose") || cfg.Output.Verbose)

	switch {
	case c.Bool("list-backups"):
		return runListBackups(c, cfg, log)
	case c.String("restore") != "":
		return runRestore(c, cfg, log)
	default:
		return runScan(c, cfg, log)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// rootArg returns the scan root from positional args, defaulting to ".".
func rootArg(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// newFormatter builds the output formatter: the --format flag overrides
// the configured format only when given explicitly, and coloring follows
// the config.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	return output.NewFormatter(resolveFormat(c, cfg), c.String("output"), cfg.Output.Color)
}

func resolveFormat(c *cli.Context, cfg *config.Config) output.Format {
	if c.IsSet("format") {
		return output.ParseFormat(c.String("format"))
	}
	return output.ParseFormat(cfg.Output.Format)
}
