package bust

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vormadev/cachebust/kit/fsutil"
)

// RewriteOptions controls how referrers are rewritten.
type RewriteOptions struct {
	// Out receives one "replacing ..." line per referrer that mentions the
	// source. Nil discards them.
	Out io.Writer
	// Atomic stages each rewritten referrer in a temp file and renames it
	// into place instead of truncating the original.
	Atomic bool
	// DryRun counts occurrences without writing anything.
	DryRun bool
	Logger *slog.Logger
}

// RewriteReferences replaces every literal occurrence of sourcePath with
// destName in each referrer, in order, and returns the total number of
// replacements. A total of zero is an error wrapping ErrNoReferenceFound.
// Referrers rewritten before a failure stay rewritten.
func RewriteReferences(sourcePath, destName string, referrers []string, opts RewriteOptions) (int, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	total := 0
	for _, ref := range referrers {
		count, err := rewriteOne(sourcePath, destName, ref, out, opts)
		if err != nil {
			return total, err
		}
		log.Debug("scanned referrer", "referrer", ref, "source", sourcePath, "count", count)
		total += count
	}

	if total == 0 {
		return 0, fmt.Errorf("%w: %q does not appear in %v", ErrNoReferenceFound, sourcePath, referrers)
	}
	return total, nil
}

func rewriteOne(sourcePath, destName, ref string, out io.Writer, opts RewriteOptions) (int, error) {
	flag := os.O_RDWR
	if opts.DryRun {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(ref, flag, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrNotFound, ref, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", ref, err)
	}
	data := string(raw)

	count := strings.Count(data, sourcePath)
	if count > 0 {
		verb := "replacing"
		if opts.DryRun {
			verb = "would replace"
		}
		fmt.Fprintf(out, "%s %d %s of %s in %s\n", verb, count, plural(count, "occurrence"), sourcePath, ref)
	}

	if opts.DryRun {
		return count, nil
	}

	output := strings.ReplaceAll(data, sourcePath, destName)

	if opts.Atomic {
		if count == 0 {
			return 0, nil
		}
		if err := f.Close(); err != nil {
			return 0, fmt.Errorf("close %s: %w", ref, err)
		}
		if err := fsutil.WriteFileAtomic(ref, []byte(output), 0644); err != nil {
			return 0, err
		}
		return count, nil
	}

	if _, err := f.WriteAt([]byte(output), 0); err != nil {
		return 0, fmt.Errorf("write %s: %w", ref, err)
	}
	if err := f.Truncate(int64(len(output))); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", ref, err)
	}
	return count, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
