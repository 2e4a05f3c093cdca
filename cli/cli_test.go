package cli

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vormadev/cachebust/bust"
	"github.com/vormadev/cachebust/internal/config"
)

func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "dist"), 0755); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(config.EnvReferrers, "")
	t.Setenv(config.EnvAlgorithm, "")
	return dir
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestRunDefaults(t *testing.T) {
	setupTestDir(t, map[string]string{
		"endless-sky.data":                "DATA",
		"to-be-modified-endless-sky.html": `<script>load("endless-sky.data")</script>`,
		"to-be-modified-endless-sky.js":   `var f = "endless-sky.data";`,
	})

	stdout, stderr, err := run(t, "endless-sky.data", "dist/")
	if err != nil {
		t.Fatalf("Run() error = %v, stderr = %s", err, stderr)
	}

	dest := "endless-sky-" + md5Hex("DATA") + ".data"
	want := "endless-sky.data -> " + dest + "\n" +
		"replacing 1 occurrence of endless-sky.data in to-be-modified-endless-sky.html\n" +
		"replacing 1 occurrence of endless-sky.data in to-be-modified-endless-sky.js\n"
	if stdout != want {
		t.Errorf("stdout =\n%q\nwant\n%q", stdout, want)
	}
	if stderr != "" {
		t.Errorf("stderr should be quiet without --verbose, got %q", stderr)
	}
	if got := readFile(t, filepath.Join("dist", dest)); got != "DATA" {
		t.Errorf("copy = %q", got)
	}
}

func TestRunReferrerFlag(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `<script src="app.js">`,
		"sw.js":      `cache("app.js")`,
	})

	_, _, err := run(t, "-r", "index.html", "--referrer", "sw.js", "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	dest := "app-" + md5Hex("A") + ".js"
	if got := readFile(t, "sw.js"); got != `cache("`+dest+`")` {
		t.Errorf("sw.js = %q", got)
	}
}

func TestRunMissingDefaultReferrer(t *testing.T) {
	setupTestDir(t, map[string]string{"app.js": "A"})

	_, _, err := run(t, "app.js", "dist")
	if !errors.Is(err, bust.ErrMissingReferenceFile) {
		t.Errorf("error = %v, want ErrMissingReferenceFile", err)
	}
}

func TestRunTargetMissing(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})

	_, _, err := run(t, "-r", "index.html", "app.js", "nowhere/")
	if !errors.Is(err, bust.ErrNotADirectory) {
		t.Errorf("error = %v, want ErrNotADirectory", err)
	}
}

func TestRunTooFewArgs(t *testing.T) {
	setupTestDir(t, nil)

	_, stderr, err := run(t, "dist")
	if err == nil {
		t.Fatal("Run() with only a target should fail")
	}
	if !strings.Contains(stderr, "usage: cachebust") {
		t.Errorf("usage not printed, stderr = %q", stderr)
	}
}

func TestRunHelp(t *testing.T) {
	setupTestDir(t, nil)

	stdout, stderr, err := run(t, "--help")
	if err != nil {
		t.Fatalf("Run(--help) error = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "--referrer") {
		t.Errorf("help should list flags, got %q", stderr)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	setupTestDir(t, nil)
	if _, _, err := run(t, "--nope", "a.js", "dist"); err == nil {
		t.Error("Run() with unknown flag should fail")
	}
}

func TestRunBadAlgorithm(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})
	_, _, err := run(t, "-a", "sha1", "-r", "index.html", "app.js", "dist")
	if err == nil || !strings.Contains(err.Error(), "unknown digest algorithm") {
		t.Errorf("error = %v, want unknown algorithm", err)
	}
}

func TestRunConfigFileAndPrecedence(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
		"other.html": `"app.js"`,
		"cachebust.jsonc": `{
			// referrers for the site build
			"Referrers": ["other.html"],
			"Algorithm": "md5",
		}`,
	})
	t.Setenv(config.EnvReferrers, "index.html")

	// File beats env.
	stdout, _, err := run(t, "-c", "cachebust.jsonc", "--dry-run", "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout, "in other.html") || strings.Contains(stdout, "in index.html") {
		t.Errorf("stdout = %q, want only other.html from the config file", stdout)
	}

	// Flag beats file.
	stdout, _, err = run(t, "-c", "cachebust.jsonc", "-a", "blake2b-128", "--dry-run", "-r", "index.html", "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout, "in index.html") {
		t.Errorf("stdout = %q, want index.html from the flag", stdout)
	}
	if strings.Contains(stdout, md5Hex("A")) {
		t.Errorf("stdout = %q, --algorithm should override the file", stdout)
	}
}

func TestRunEnvReferrers(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})
	t.Setenv(config.EnvReferrers, "index.html")

	stdout, _, err := run(t, "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout, "in index.html") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunEnvReferrersOnlySeparators(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})
	sep := string(os.PathListSeparator)
	t.Setenv(config.EnvReferrers, sep+sep)

	_, _, err := run(t, "app.js", "dist")
	if err == nil || !strings.Contains(err.Error(), config.EnvReferrers) {
		t.Errorf("error = %v, want error naming %s", err, config.EnvReferrers)
	}
}

func TestRunDryRun(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})

	stdout, _, err := run(t, "--dry-run", "-r", "index.html", "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout, "would replace 1 occurrence of app.js in index.html") {
		t.Errorf("stdout = %q", stdout)
	}
	if got := readFile(t, "index.html"); got != `"app.js"` {
		t.Errorf("dry run modified index.html: %q", got)
	}
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	setupTestDir(t, map[string]string{
		"app.js":     "A",
		"index.html": `"app.js"`,
	})

	stdout, stderr, err := run(t, "-v", "--atomic", "-r", "index.html", "app.js", "dist")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Contains(stdout, "DEBUG") {
		t.Errorf("debug records leaked to stdout: %q", stdout)
	}
	for _, want := range []string{"(cachebust)", "DEBUG  digest computed", "DONE"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunConfigFileMissing(t *testing.T) {
	setupTestDir(t, nil)
	_, _, err := run(t, "-c", "nope.jsonc", "a.js", "dist")
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Errorf("error = %v, want read config file error", err)
	}
}
