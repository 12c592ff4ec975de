package integrity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/holdings/internal/importerr"
)

// sha256("test")
const testDigest = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.Xls")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDigest(t *testing.T) {
	got, err := Digest(writeFile(t, []byte("test")))
	require.NoError(t, err)
	assert.Equal(t, testDigest, got)
}

func TestVerify_Match(t *testing.T) {
	path := writeFile(t, []byte("test"))
	assert.NoError(t, Verify(path, testDigest))
	assert.NoError(t, Verify(path, strings.ToUpper(testDigest)))
}

func TestVerify_Mismatch(t *testing.T) {
	path := writeFile(t, []byte("tesT"))
	err := Verify(path, testDigest)

	var ie *importerr.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, testDigest, ie.Declared)
	assert.NotEmpty(t, ie.Actual)
	assert.NotEqual(t, ie.Declared, ie.Actual)
}

func TestVerify_AnySingleByteMutationFails(t *testing.T) {
	data := []byte("a small but non-trivial workbook body\x00\x01\x02")
	path := writeFile(t, data)
	declared, err := Digest(path)
	require.NoError(t, err)
	require.NoError(t, Verify(path, declared))

	for i := range data {
		mutated := append([]byte(nil), data...)
		mutated[i] ^= 0x01
		require.NoError(t, os.WriteFile(path, mutated, 0o644))
		assert.Error(t, Verify(path, declared), "mutation at byte %d must fail", i)
	}
}

func TestVerify_MissingFile(t *testing.T) {
	err := Verify(filepath.Join(t.TempDir(), "missing.Xls"), testDigest)

	var ie *importerr.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
