// Package config holds file-level configuration and the validated scan
// parameters passed into the walker.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for deadwood.
type Config struct {
	Scan   ScanSettings   `koanf:"scan"`
	Backup BackupSettings `koanf:"backup"`
	Cache  CacheSettings  `koanf:"cache"`
	Output OutputSettings `koanf:"output"`
}

// ScanSettings controls file discovery.
type ScanSettings struct {
	Types       []string `koanf:"types"`
	Exclude     []string `koanf:"exclude"`
	MaxDepth    int      `koanf:"max_depth"`
	MaxFileSize int64    `koanf:"max_file_size"` // bytes; files above are skipped
	Gitignore   bool     `koanf:"gitignore"`     // also honor .gitignore files
}

// BackupSettings controls the pre-deletion backup step.
type BackupSettings struct {
	Enabled bool `koanf:"enabled"`
}

// CacheSettings controls the reference-extraction cache.
type CacheSettings struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // hours
}

// OutputSettings controls output formatting.
type OutputSettings struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanSettings{
			Types: []string{"js", "jsx", "ts", "tsx", "mjs", "cjs"},
			Exclude: []string{
				"node_modules",
				".git",
				"dist",
				"build",
				"coverage",
				"vendor",
				"__pycache__",
				BackupDirName,
			},
			MaxDepth:    10,
			MaxFileSize: 10 * 1024 * 1024,
			Gitignore:   false,
		},
		Backup: BackupSettings{
			Enabled: true,
		},
		Cache: CacheSettings{
			Enabled: true,
			Dir:     ".deadwood/cache",
			TTL:     24,
		},
		Output: OutputSettings{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// BackupDirName is the fixed directory under the scan root that holds
// backup snapshots. The name is an on-disk compatibility contract.
const BackupDirName = ".dead-code-backups"

// Load loads configuration from a file, layering it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"deadwood.toml",
		"deadwood.yaml",
		"deadwood.yml",
		"deadwood.json",
		".deadwood.toml",
		".deadwood.yaml",
		".deadwood.yml",
		".deadwood.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}
