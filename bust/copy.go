package bust

import (
	"fmt"
	"path/filepath"

	"github.com/vormadev/cachebust/kit/fsutil"
)

// DestinationPath returns where destName lands inside targetDir. An
// absolute destName (possible when an extensionless source was given as an
// absolute path) is used as is.
func DestinationPath(targetDir, destName string) string {
	if filepath.IsAbs(destName) {
		return destName
	}
	return filepath.Join(targetDir, destName)
}

// CopyToDestination copies sourcePath byte for byte to destName inside
// targetDir, carrying over the source's permission bits.
func CopyToDestination(sourcePath, targetDir, destName string) error {
	dest := DestinationPath(targetDir, destName)
	if err := fsutil.CopyFile(sourcePath, dest); err != nil {
		return fmt.Errorf("copy %s to %s: %w", sourcePath, dest, err)
	}
	return nil
}
