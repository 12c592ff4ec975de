// Package integrity gates an import on the SHA-256 fingerprint declared in its manifest.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cleared-dev/holdings/internal/id"
	"github.com/cleared-dev/holdings/internal/importerr"
)

// Digest returns the lower-case hex SHA-256 of the whole file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify recomputes the file's digest and compares it to declared.
// Any failure is an *importerr.IntegrityError.
func Verify(path, declared string) error {
	actual, err := Digest(path)
	if err != nil {
		return &importerr.IntegrityError{Path: path, Declared: declared, Err: err}
	}
	if !id.SameFingerprint(actual, declared) {
		return &importerr.IntegrityError{Path: path, Declared: declared, Actual: actual}
	}
	return nil
}
