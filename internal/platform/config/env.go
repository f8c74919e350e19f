package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Options tunes environment parsing for one config target.
type Options struct {
	// Prefix is prepended to every env tag on the target.
	Prefix string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	return ParseEnvWithOptions(target, Options{})
}

// ParseEnvWithOptions loads configuration from environment variables using opts.
func ParseEnvWithOptions(target any, opts Options) error {
	if target == nil {
		return fmt.Errorf("parse env: target is required")
	}
	if err := env.ParseWithOptions(target, env.Options{
		Prefix:      opts.Prefix,
		Environment: opts.Environment,
	}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
