package bust

import (
	"path/filepath"
	"strings"
)

// BuildDestinationName returns the hashed file name for sourcePath.
//
// The basename is split at its first ".", so "app.min.js" becomes
// "app-<digest>.min.js". When the basename has no ".", the whole
// sourcePath (not just the basename) is used as the base.
func BuildDestinationName(sourcePath, digest string) string {
	name := filepath.Base(sourcePath)
	if base, ext, ok := strings.Cut(name, "."); ok {
		return base + "-" + digest + "." + ext
	}
	return sourcePath + "-" + digest
}
