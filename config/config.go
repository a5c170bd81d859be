package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/cobra"
)

const (
	// CollisionOverwrite silently replaces an earlier copy when two messages
	// compose the same destination name.
	CollisionOverwrite = "overwrite"
	// CollisionSuffix appends a sequence number to later copies instead.
	CollisionSuffix = "suffix"
)

// Config captures all command-line options required to run the sorter.
type Config struct {
	SourceDir       string
	DestDir         string
	DryRun          bool
	SkipUnparseable bool
	Collision       string
	LogLevel        string
	LogDir          string
	IncludeHeader   []string
	IncludeBody     []string
	ExcludeHeader   []string
	ExcludeBody     []string
}

// envDefaults hold directory fallbacks read from the environment; explicit
// flags always win over them.
type envDefaults struct {
	SourceDir string `env:"EMLSORT_SOURCE"`
	DestDir   string `env:"EMLSORT_DEST"`
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("source", "email", "Directory containing the .eml files to sort (falls back to EMLSORT_SOURCE env var)")
	flags.String("dest", "sort", "Destination root for per-sender folders (falls back to EMLSORT_DEST env var)")
	flags.Bool("dry-run", false, "Report what would be copied without writing anything")
	flags.Bool("skip-unparseable", false, "Skip files that cannot be parsed as messages instead of aborting the run")
	flags.String("collision", CollisionOverwrite, "Behavior when two copies compose the same name: overwrite or suffix")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (disabled when empty)")
	flags.StringArray("include-header", nil, "Regex allow-list applied to message headers (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-header", nil, "Regex block-list applied to message headers (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	sourceDir, err := flags.GetString("source")
	if err != nil {
		return Config{}, err
	}
	destDir, err := flags.GetString("dest")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Config{}, err
	}
	skipUnparseable, err := flags.GetBool("skip-unparseable")
	if err != nil {
		return Config{}, err
	}
	collision, err := flags.GetString("collision")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	includeHeader, err := flags.GetStringArray("include-header")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeHeader, err := flags.GetStringArray("exclude-header")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	var defaults envDefaults
	if err := env.Parse(&defaults); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if defaults.SourceDir != "" && !flags.Changed("source") {
		sourceDir = defaults.SourceDir
	}
	if defaults.DestDir != "" && !flags.Changed("dest") {
		destDir = defaults.DestDir
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}

	cfg := Config{
		SourceDir:       filepath.Clean(sourceDir),
		DestDir:         filepath.Clean(destDir),
		DryRun:          dryRun,
		SkipUnparseable: skipUnparseable,
		Collision:       strings.ToLower(collision),
		LogLevel:        logLevel,
		LogDir:          logDir,
		IncludeHeader:   includeHeader,
		IncludeBody:     includeBody,
		ExcludeHeader:   excludeHeader,
		ExcludeBody:     excludeBody,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.SourceDir == "" {
		return fmt.Errorf("--source is required")
	}
	if cfg.DestDir == "" {
		return fmt.Errorf("--dest is required")
	}

	switch cfg.Collision {
	case CollisionOverwrite, CollisionSuffix:
	default:
		return fmt.Errorf("invalid --collision: %s (expected overwrite or suffix)", cfg.Collision)
	}

	includeActive := len(cfg.IncludeHeader) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeHeader) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}
