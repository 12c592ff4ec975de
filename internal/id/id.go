package id

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FingerprintLen is the length of a hex-encoded SHA-256 digest.
const FingerprintLen = 64

// NormalizeFingerprint lower-cases a hex SHA-256 digest and checks its shape.
// " ABC…" -> "abc…"
func NormalizeFingerprint(s string) (string, error) {
	fp := strings.ToLower(strings.TrimSpace(s))
	if len(fp) != FingerprintLen {
		return "", fmt.Errorf("invalid sha256 fingerprint %q: expected %d hex characters, got %d", s, FingerprintLen, len(fp))
	}
	if _, err := hex.DecodeString(fp); err != nil {
		return "", fmt.Errorf("invalid sha256 fingerprint %q: %w", s, err)
	}
	return fp, nil
}

// ShortFingerprint returns the first 12 characters of a fingerprint for log lines.
func ShortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}

// SameFingerprint compares two hex digests case-insensitively.
func SameFingerprint(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
