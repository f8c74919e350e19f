package review

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8094 {
		t.Fatalf("expected default port 8094, got %d", cfg.Port)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("FTC_REVIEW_PORT", "9094")

	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9094 {
		t.Fatalf("expected env port 9094, got %d", cfg.Port)
	}

	fs = flag.NewFlagSet("review", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-port", "9095"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9095 {
		t.Fatalf("expected port override 9095, got %d", cfg.Port)
	}
}
