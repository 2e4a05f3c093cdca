// Package bust implements content-addressed cache busting for static
// assets. Each source file is hashed, every literal reference to it in a
// fixed list of referrer files is rewritten to the hashed name, and the
// source is copied under that name into a target directory.
package bust

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vormadev/cachebust/kit/fsutil"
)

// DefaultReferrers are the referrer files used when none are configured.
var DefaultReferrers = []string{
	"to-be-modified-endless-sky.html",
	"to-be-modified-endless-sky.js",
}

// Options configures a Run.
type Options struct {
	// Referrers are rewritten in order for every source. Empty means
	// DefaultReferrers.
	Referrers []string
	Algorithm Algorithm
	Atomic    bool
	DryRun    bool
	// Out receives progress lines. Nil discards them.
	Out    io.Writer
	Logger *slog.Logger
}

// Result describes one processed source.
type Result struct {
	Source       string
	DestName     string
	DestPath     string
	Digest       string
	Bytes        int64
	Replacements int
}

// NormalizeTarget strips a single trailing path separator.
func NormalizeTarget(target string) string {
	if strings.HasSuffix(target, "/") || strings.HasSuffix(target, string(filepath.Separator)) {
		return target[:len(target)-1]
	}
	return target
}

// Run processes sources in order against targetDir.
//
// The target directory and every referrer are checked before any source is
// read. The first error aborts the batch; sources already processed keep
// their rewritten referrers and copies, and their results are returned
// alongside the error. ctx is only consulted between sources.
func Run(ctx context.Context, sources []string, targetDir string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	targetDir = NormalizeTarget(targetDir)
	if !fsutil.IsDir(targetDir) {
		return nil, fmt.Errorf("%w: %q", ErrNotADirectory, targetDir)
	}
	for _, ref := range opts.Referrers {
		if !fsutil.Exists(ref) {
			return nil, fmt.Errorf("%w: %s must exist to be modified", ErrMissingReferenceFile, ref)
		}
	}

	results := make([]Result, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := Process(source, targetDir, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	opts.Logger.Debug("batch complete", "sources", len(results), "target", targetDir)
	return results, nil
}

// Process runs the digest, rewrite and copy steps for a single source.
// It does not validate targetDir or the referrers; Run does that once
// per batch.
func Process(source, targetDir string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	digest, n, err := digestFile(source, opts.Algorithm)
	if err != nil {
		return Result{}, err
	}
	destName := BuildDestinationName(source, digest)
	res := Result{
		Source:   source,
		DestName: destName,
		DestPath: DestinationPath(targetDir, destName),
		Digest:   digest,
		Bytes:    n,
	}
	opts.Logger.Debug("digest computed", "source", source, "bytes", n, "algorithm", string(opts.Algorithm))

	fmt.Fprintln(opts.Out, source, "->", destName)

	res.Replacements, err = RewriteReferences(source, destName, opts.Referrers, RewriteOptions{
		Out:    opts.Out,
		Atomic: opts.Atomic,
		DryRun: opts.DryRun,
		Logger: opts.Logger,
	})
	if err != nil {
		return Result{}, err
	}

	if opts.DryRun {
		return res, nil
	}
	if err := CopyToDestination(source, targetDir, destName); err != nil {
		return Result{}, err
	}
	opts.Logger.Debug("copied", "source", source, "dest", res.DestPath)
	return res, nil
}

func (o Options) withDefaults() Options {
	if len(o.Referrers) == 0 {
		o.Referrers = DefaultReferrers
	}
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmMD5
	}
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
