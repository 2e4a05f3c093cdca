// Package config holds the settings for one cachebust run and the layered
// sources they come from: defaults, environment, config file, then flags.
package config

import (
	"fmt"

	"github.com/vormadev/cachebust/bust"
)

// Config is one invocation's settings.
type Config struct {
	Sources   []string
	TargetDir string
	Referrers []string
	Algorithm string
	Atomic    bool
	DryRun    bool
}

// Default returns a Config with the historical referrer list and digest.
func Default() *Config {
	return &Config{
		Referrers: append([]string(nil), bust.DefaultReferrers...),
		Algorithm: string(bust.AlgorithmMD5),
	}
}

// SetPositional assigns sources and target from positional arguments:
// every argument but the last is a source, the last is the target directory.
func (c *Config) SetPositional(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("config: need at least one source and a target directory, got %d argument(s)", len(args))
	}
	c.Sources = append([]string(nil), args[:len(args)-1]...)
	c.TargetDir = args[len(args)-1]
	return nil
}

// Validate checks that c describes a runnable batch.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: at least one source is required")
	}
	if c.TargetDir == "" {
		return fmt.Errorf("config: target directory is required")
	}
	if len(c.Referrers) == 0 {
		return fmt.Errorf("config: at least one referrer is required")
	}
	for i, r := range c.Referrers {
		if r == "" {
			return fmt.Errorf("config: Referrers[%d] is empty", i)
		}
	}
	if _, err := bust.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options converts c into bust.Options. Call Validate first.
func (c *Config) Options() bust.Options {
	return bust.Options{
		Referrers: c.Referrers,
		Algorithm: bust.Algorithm(c.Algorithm),
		Atomic:    c.Atomic,
		DryRun:    c.DryRun,
	}
}
