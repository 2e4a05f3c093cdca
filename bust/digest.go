package bust

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Algorithm names a 128-bit content digest.
type Algorithm string

const (
	AlgorithmMD5        Algorithm = "md5"
	AlgorithmBLAKE2b128 Algorithm = "blake2b-128"
)

const chunkSize = 4096

// ParseAlgorithm returns the Algorithm named s.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AlgorithmMD5, AlgorithmBLAKE2b128:
		return a, nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %q (want %q or %q)", s, AlgorithmMD5, AlgorithmBLAKE2b128)
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case AlgorithmMD5, "":
		return md5.New(), nil
	case AlgorithmBLAKE2b128:
		return blake2b.New(16, nil)
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", a)
	}
}

// Digest returns the lowercase hex digest of the file at path. An empty
// algo means AlgorithmMD5.
func Digest(path string, algo Algorithm) (string, error) {
	sum, _, err := digestFile(path, algo)
	return sum, err
}

// digestFile streams path through the hash in fixed-size chunks and also
// reports the number of bytes read.
func digestFile(path string, algo Algorithm) (string, int64, error) {
	h, err := algo.newHash()
	if err != nil {
		return "", 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()

	var length int64
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			length += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), length, nil
}
