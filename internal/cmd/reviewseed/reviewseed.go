// Package reviewseed loads review fixtures into a local database.
package reviewseed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/ftcplatform/platform/internal/platform/cmd"
	"github.com/ftcplatform/platform/internal/services/review/seed"
	reviewsqlite "github.com/ftcplatform/platform/internal/services/review/storage/sqlite"
)

// Config holds review seed command configuration.
type Config struct {
	DBPath  string `env:"FTC_REVIEW_DB_PATH" envDefault:"data/review.db"`
	Fixture string `env:"FTC_REVIEW_SEED_FIXTURE" envDefault:"demo"`
	File    string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "review sqlite database path")
	fs.StringVar(&cfg.Fixture, "fixture", cfg.Fixture, "embedded fixture name")
	fs.StringVar(&cfg.File, "file", "", "fixture file path (overrides -fixture)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the configured fixture and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	fixture, err := loadFixture(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := reviewsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open review sqlite store: %w", err)
	}
	defer store.Close()

	summary, err := seed.Load(ctx, store, fixture, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "events=%d questions=%d applicants=%d applications=%d responses=%d skipped=%d\n",
		summary.Events, summary.Questions, summary.Applicants, summary.Applications, summary.Responses, summary.Skipped)
	return nil
}

func loadFixture(cfg Config) (seed.Fixture, error) {
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		return seed.Embedded(cfg.Fixture)
	}
	file, err := os.Open(path)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()
	return seed.Decode(file)
}
