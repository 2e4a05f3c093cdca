// Package cli wires command-line flags, the environment and an optional
// config file into a bust.Run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/vormadev/cachebust/bust"
	"github.com/vormadev/cachebust/internal/config"
	"github.com/vormadev/cachebust/kit/colorlog"
)

const usage = `usage: cachebust [flags] <source>... <target-directory>

Copies each source to <target-directory>/<base>-<digest><extensions> and
rewrites every literal reference to the source path in the referrer files.

flags:
`

// Run executes one cachebust invocation. args excludes the program name.
// Progress lines go to stdout; diagnostics and usage go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		referrers  []string
		configPath string
		algorithm  string
		atomic     bool
		dryRun     bool
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("cachebust", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringArrayVarP(&referrers, "referrer", "r", nil, "file to rewrite (repeatable; replaces the default list)")
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a JSONC config file")
	flagSet.StringVarP(&algorithm, "algorithm", "a", "", `digest algorithm: "md5" or "blake2b-128"`)
	flagSet.BoolVar(&atomic, "atomic", false, "replace referrers via temp file and rename")
	flagSet.BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flagSet.Usage = func() {
		fmt.Fprint(stderr, usage)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("referrer") {
		cfg.Referrers = referrers
	}
	if flagSet.Changed("algorithm") {
		cfg.Algorithm = algorithm
	}
	if flagSet.Changed("atomic") {
		cfg.Atomic = atomic
	}
	cfg.DryRun = dryRun

	if err := cfg.SetPositional(flagSet.Args()); err != nil {
		flagSet.Usage()
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := colorlog.New("cachebust", colorlog.Options{Output: stderr, Level: level})
	log.Debug("config resolved",
		"referrers", cfg.Referrers,
		"algorithm", cfg.Algorithm,
		"atomic", cfg.Atomic,
		"dry_run", cfg.DryRun,
	)

	opts := cfg.Options()
	opts.Out = stdout
	opts.Logger = log

	results, err := bust.Run(ctx, cfg.Sources, cfg.TargetDir, opts)
	if err != nil {
		return err
	}

	replaced := 0
	for _, r := range results {
		replaced += r.Replacements
	}
	log.Info("DONE", "sources", len(results), "replacements", replaced)
	return nil
}

// resolveConfig layers defaults, environment and the config file.
// Flags are applied by the caller.
func resolveConfig(configPath string) (*config.Config, error) {
	cfg := config.Default()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if configPath == "" {
		return cfg, nil
	}
	f, err := config.ParseFile(configPath)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	return cfg, nil
}
