package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variable keys
const (
	EnvReferrers = "CACHEBUST_REFERRERS"
	EnvAlgorithm = "CACHEBUST_ALGORITHM"
)

// LoadDotenv loads path into the process environment if it exists.
// Variables already set in the environment are kept.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overlays environment overrides onto c. CACHEBUST_REFERRERS is
// split on the OS path-list separator; a value naming no files is an error.
func ApplyEnv(c *Config) error {
	if v := os.Getenv(EnvReferrers); v != "" {
		var refs []string
		for _, r := range filepath.SplitList(v) {
			if r != "" {
				refs = append(refs, r)
			}
		}
		if len(refs) == 0 {
			return fmt.Errorf("config: %s=%q names no files", EnvReferrers, v)
		}
		c.Referrers = refs
	}
	if v := os.Getenv(EnvAlgorithm); v != "" {
		c.Algorithm = v
	}
	return nil
}
