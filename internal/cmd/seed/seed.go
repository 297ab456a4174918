// Package seed parses seed tool flags and loads fixtures into the store.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	entrypoint "github.com/dealdeskhq/dealdesk/internal/platform/cmd"
	"github.com/dealdeskhq/dealdesk/internal/services/coordination/storage/sqlite"
	"github.com/dealdeskhq/dealdesk/internal/tools/seed"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"DEALDESK_DB_PATH"`
	FixturePath string `env:"DEALDESK_SEED_FILE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "coordination.db")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "coordination database path")
	fs.StringVar(&cfg.FixturePath, "file", cfg.FixturePath, "YAML fixture file to load")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.FixturePath) == "" {
		return fmt.Errorf("fixture file is required (use -file)")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open coordination store: %w", err)
	}
	defer func() { _ = store.Close() }()

	result, err := seed.LoadFile(ctx, store, cfg.FixturePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d templates, %d legacy templates, %d clients\n",
		result.Templates, result.LegacyTemplates, result.Clients)
	return nil
}
