package bust

import "errors"

var (
	// ErrNotADirectory is returned when the target is not an existing directory.
	ErrNotADirectory = errors.New("target is not a directory")
	// ErrMissingReferenceFile is returned when a referrer is absent before any work starts.
	ErrMissingReferenceFile = errors.New("reference file does not exist")
	// ErrNotFound wraps failures to open or read a source or referrer.
	ErrNotFound = errors.New("file not found or not accessible")
	// ErrNoReferenceFound is returned when no referrer mentions the source.
	ErrNoReferenceFound = errors.New("no reference to source found")
)
