package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// File is the on-disk config. Comments and trailing commas are allowed.
type File struct {
	Referrers []string `json:"Referrers,omitempty"`
	Algorithm string   `json:"Algorithm,omitempty"`
	Atomic    *bool    `json:"Atomic,omitempty"`
}

// Parse parses config file bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

// ParseFile reads and parses a config file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Apply overlays the fields set in f onto c.
func (f *File) Apply(c *Config) {
	if len(f.Referrers) > 0 {
		c.Referrers = append([]string(nil), f.Referrers...)
	}
	if f.Algorithm != "" {
		c.Algorithm = f.Algorithm
	}
	if f.Atomic != nil {
		c.Atomic = *f.Atomic
	}
}
