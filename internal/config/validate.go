package config

import (
	"fmt"

	"github.com/matsen/bibextract/internal/style"
)

// Validate checks repository settings. Zero values are allowed.
func (c *Config) Validate() error {
	if c.DefaultStyle != "" {
		if err := validateStyle(c.DefaultStyle); err != nil {
			return fmt.Errorf("default_style: %w", err)
		}
	}
	if err := validateThreshold(c.TitleThreshold); err != nil {
		return fmt.Errorf("title_threshold: %w", err)
	}
	if err := validateThreshold(c.AuthorThreshold); err != nil {
		return fmt.Errorf("author_threshold: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	return nil
}

// Validate checks global settings after defaults and environment overrides.
func (g *GlobalConfig) Validate() error {
	if err := validateStyle(g.Style); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	if g.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", g.Workers)
	}
	if err := g.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (l LogConfig) validate() error {
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error (got %q)", l.Level)
	}
	switch l.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("format must be text or json (got %q)", l.Format)
	}
	return nil
}

func validateStyle(name string) error {
	if _, ok := style.Lookup(name); !ok {
		return fmt.Errorf("unknown style %q (supported: %v)", name, style.SupportedStyles)
	}
	return nil
}

func validateThreshold(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("must be within [0, 100] (got %v)", v)
	}
	return nil
}
