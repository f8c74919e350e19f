package reviewseed

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("review-seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/review.db" || cfg.Fixture != "demo" || cfg.File != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestRunLoadsEmbeddedFixtureTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed", "review.db")
	cfg := Config{DBPath: dbPath, Fixture: "demo"}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !strings.Contains(out.String(), "applications=3") {
		t.Fatalf("first summary = %q", out.String())
	}

	out.Reset()
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out.String(), "skipped=3") {
		t.Fatalf("second summary = %q", out.String())
	}
}

func TestRunRejectsUnknownFixture(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "review.db"), Fixture: "missing"}
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown fixture")
	}
}

func TestRunRejectsBadFixtureFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("unknown_field: true\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg := Config{DBPath: filepath.Join(dir, "review.db"), File: path}
	if err := Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for invalid fixture file")
	}
}
